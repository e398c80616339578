package config

import "time"

const (
	defaultServerURL      = "http://127.0.0.1:3000"
	defaultRequestTimeout = 3 * time.Minute
)

// Config is what studyctl needs to reach the API. RequestTimeout bounds one
// call, and processing a long text with every format can take a while.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerURL = defaultServerURL
	c.RequestTimeout = defaultRequestTimeout
}

// LoadConfig layers defaults, the optional JSON file and flags, in that order.
// Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
