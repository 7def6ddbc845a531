// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server and the tourctl CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisURL points at the shared master-list cache. Empty disables it.
	RedisURL string

	// EntityCacheTTL bounds how long cached master lists and import sessions
	// are reused. Defaults to 5m.
	EntityCacheTTL time.Duration

	// MaxBodyBytes caps request bodies. Defaults to 5 MiB.
	MaxBodyBytes int64

	// Import defaults substituted when an import row leaves a reference blank.
	ImportDefaultCompany     string
	ImportDefaultGuide       string
	ImportDefaultNationality string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win over it.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		CORSOrigins:              splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:                 os.Getenv("REDIS_URL"),
		ImportDefaultCompany:     getEnv("IMPORT_DEFAULT_COMPANY", "Việt Á"),
		ImportDefaultGuide:       getEnv("IMPORT_DEFAULT_GUIDE", "Cao Hữu Tu"),
		ImportDefaultNationality: os.Getenv("IMPORT_DEFAULT_NATIONALITY"),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	ttl, err := time.ParseDuration(getEnv("ENTITY_CACHE_TTL", "5m"))
	if err != nil || ttl <= 0 {
		invalid = append(invalid, "ENTITY_CACHE_TTL")
	}
	cfg.EntityCacheTTL = ttl

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "5242880"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	cfg.MaxBodyBytes = maxBody

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
