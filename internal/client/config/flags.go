package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/flagx"
)

var errBadTimeout = errors.New("timeout must be a positive duration such as 90s or a number of seconds")

// parseTimeout accepts a Go duration ("90s", "2m") or bare seconds ("90").
func parseTimeout(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, errBadTimeout
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errBadTimeout
	}
	return d, nil
}

// parseFlags applies -a (API base URL) and -t (request timeout). Only those
// two are picked out of os.Args; -c/-config belong to parseJson.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("studyctl", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "API base URL")
	fs.Func("t", "request timeout, e.g. 90s or 90", func(s string) error {
		d, err := parseTimeout(s)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = d
		return nil
	})

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})); err != nil {
		panic(err)
	}
}
