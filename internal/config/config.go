package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all runtime settings for the service. Values come from the
// environment; cmd/api loads an optional .env file before calling Load.
type Config struct {
	Addr        string
	Version     string
	PostgresDSN string

	// Token signing and lifetime policy.
	AuthSecret      string
	DefaultTokenTTL time.Duration

	// Login rate limiting (token bucket per client IP).
	LoginRateBurst     int
	LoginRatePerSecond int

	MaxBodyBytes int64
}

// Load reads configuration from environment variables with safe defaults.
func Load() Config {
	return Config{
		Addr:        getenv("TODOVAULT_ADDR", ":8080"),
		Version:     getenv("TODOVAULT_VERSION", "dev"),
		PostgresDSN: os.Getenv("TODOVAULT_PG_DSN"),

		AuthSecret:      getenv("TODOVAULT_AUTH_SECRET", ""),
		DefaultTokenTTL: time.Duration(getint("TODOVAULT_TOKEN_TTL_HOURS", 24)) * time.Hour,

		LoginRateBurst:     getint("TODOVAULT_RATE_LOGIN_BURST", 10),
		LoginRatePerSecond: getint("TODOVAULT_RATE_LOGIN_PER_SECOND", 2),

		MaxBodyBytes: int64(getint("TODOVAULT_MAX_BODY_BYTES", 1<<20)),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
