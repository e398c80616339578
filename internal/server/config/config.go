// Package config handles configuration for the server component,
// including defaults, JSON overlay, .env/environment variables and
// command-line flags.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds runtime settings for the Smart Study server. It is built
// once at startup and passed to constructors; nothing below main reads the
// environment directly.
//
// Fields:
//   - Addr: bind address for the REST API (":3000").
//   - DatabaseDSN: SQLite ("file:study.db") or PostgreSQL ("postgres://...") DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Mandatory.
//   - TokenValidityDuration: bearer token lifetime.
//   - Environment: "production" hides error details and stack traces.
//   - AIAPIKey / AIModel / AIBaseURL: OpenAI-compatible generation backend.
//   - AITimeout / AITemperature: per-call timeout and default temperature.
//   - RateLimitWindow / RateLimitMax: per-IP request budget at the edge.
//   - S3*: object storage used by session export; export is off without a bucket.
type Config struct {
	Addr                  string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	Environment           string
	LogFormat             string
	LogLevel              string
	AIAPIKey              string
	AIModel               string
	AIBaseURL             string
	AITimeout             time.Duration
	AITemperature         float32
	RateLimitWindow       time.Duration
	RateLimitMax          int
	CORSOrigins           string
	BodyLimitMB           int
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
}

// LoadDefaults populates Config with development defaults. DatabaseDSN and
// SecretKey are intentionally left empty: they must be supplied.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.TokenValidityDuration = 24 * time.Hour
	c.Environment = "development"
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.AIModel = "gpt-4o-mini"
	c.AITimeout = 60 * time.Second
	c.AITemperature = 0.6
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitMax = 100
	c.CORSOrigins = "*"
	c.BodyLimitMB = 10
	c.S3Region = "us-east-1"
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ExportEnabled reports whether S3 export is configured.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}

// Validate checks mandatory settings. A non-nil error must abort startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token validity must be positive"))
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit window and threshold must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the .env file and process environment, and
// finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	loadEnvFile()
	parseEnv(cfg, lookupEnv)
	parseFlags(cfg)
	return cfg
}
