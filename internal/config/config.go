// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs read from the environment.
type Config struct {
	HTTPAddr          string
	DatabaseURL       string
	MongoURI          string
	MongoDB           string
	JWTSecret         string
	ListingTTLDays    int
	ExpirySweepPeriod time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load collects configuration from environment with defaults.
// DATABASE_URL and JWT_SECRET have no sensible default and are validated
// by the caller.
func Load() Config {
	return Config{
		HTTPAddr:          ":" + getenv("PORT", "8083"),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getenv("MONGO_DB", "cropmarket"),
		JWTSecret:         getenv("JWT_SECRET", ""),
		ListingTTLDays:    atoienv("LISTING_TTL_DAYS", 30),
		ExpirySweepPeriod: time.Duration(atoienv("EXPIRY_SWEEP_MINUTES", 60)) * time.Minute,
	}
}
