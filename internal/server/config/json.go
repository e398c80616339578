package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/smartstudy/internal/flagx"
	"github.com/dmitrijs2005/smartstudy/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// Durations use timex.Duration so both "15m" and integer nanoseconds work.
// Zero values are treated as "not set" and leave the target untouched.
type JsonConfig struct {
	Addr                  string         `json:"addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	Environment           string         `json:"environment"`
	LogFormat             string         `json:"log_format"`
	LogLevel              string         `json:"log_level"`
	AIAPIKey              string         `json:"ai_api_key"`
	AIModel               string         `json:"ai_model"`
	AIBaseURL             string         `json:"ai_base_url"`
	AITimeout             timex.Duration `json:"ai_timeout"`
	AITemperature         *float32       `json:"ai_temperature"`
	RateLimitWindow       timex.Duration `json:"rate_limit_window"`
	RateLimitMax          int            `json:"rate_limit_max"`
	CORSOrigins           string         `json:"cors_origins"`
	BodyLimitMB           int            `json:"body_limit_mb"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.Addr, c.Addr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setString(&config.Environment, c.Environment)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.AIAPIKey, c.AIAPIKey)
	setString(&config.AIModel, c.AIModel)
	setString(&config.AIBaseURL, c.AIBaseURL)
	if c.AITimeout.Duration > 0 {
		config.AITimeout = c.AITimeout.Duration
	}
	if c.AITemperature != nil {
		config.AITemperature = *c.AITemperature
	}
	if c.RateLimitWindow.Duration > 0 {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.RateLimitMax > 0 {
		config.RateLimitMax = c.RateLimitMax
	}
	setString(&config.CORSOrigins, c.CORSOrigins)
	if c.BodyLimitMB > 0 {
		config.BodyLimitMB = c.BodyLimitMB
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
