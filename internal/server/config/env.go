package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/smartstudy/internal/flagx"
	"github.com/joho/godotenv"
)

// lookupEnv is a seam over os.LookupEnv.
var lookupEnv = os.LookupEnv

// loadEnvFile loads variables from the file given with -env, or from ./.env
// when it exists. Variables already present in the process environment win.
// A missing default .env is not an error; a missing explicit file panics.
func loadEnvFile() {
	path := flagx.EnvFileFlag()
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}

// parseEnv overlays Config with environment variables. Malformed numeric
// or duration values panic, the same way malformed flags do.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(key + ": " + err.Error())
			}
			*dst = d
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(key + ": " + err.Error())
			}
			*dst = n
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		config.Addr = ":" + port
	}
	str(&config.DatabaseDSN, "DATABASE_URL")
	str(&config.SecretKey, "JWT_SECRET")
	dur(&config.TokenValidityDuration, "TOKEN_TTL")
	str(&config.Environment, "APP_ENV")
	str(&config.LogFormat, "LOG_FORMAT")
	str(&config.LogLevel, "LOG_LEVEL")
	str(&config.AIAPIKey, "AI_API_KEY", "OPENAI_API_KEY")
	str(&config.AIModel, "AI_MODEL")
	str(&config.AIBaseURL, "AI_BASE_URL")
	dur(&config.AITimeout, "AI_TIMEOUT")
	if v, ok := lookup("AI_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			panic("AI_TEMPERATURE: " + err.Error())
		}
		config.AITemperature = float32(f)
	}
	dur(&config.RateLimitWindow, "RATE_LIMIT_WINDOW")
	num(&config.RateLimitMax, "RATE_LIMIT_MAX")
	str(&config.CORSOrigins, "CORS_ORIGINS")
	num(&config.BodyLimitMB, "BODY_LIMIT_MB")
	str(&config.S3RootUser, "S3_ROOT_USER")
	str(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	str(&config.S3Bucket, "S3_BUCKET")
	str(&config.S3Region, "S3_REGION")
	str(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}
