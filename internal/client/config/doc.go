// Package config resolves studyctl settings.
//
// Defaults come first, then the JSON file named by -c/-config, then flags:
//
//	-a URL        API base URL (default http://127.0.0.1:3000)
//	-t DURATION   per-request timeout, "90s" or plain seconds (default 3m)
//
// The JSON file uses the same settings:
//
//	{"server_url": "https://study.example.com", "request_timeout": "2m"}
package config
