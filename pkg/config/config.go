// Package config loads kernel deployment configuration from the
// environment — no config framework, defaulted the way a small service
// is expected to be.
package config

import "os"

// StorageBackend selects which pkg/storage.Adapter implementation the
// CLI wires up.
type StorageBackend string

const (
	StorageBackendMemory   StorageBackend = "memory"
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendPostgres StorageBackend = "postgres"
)

// Config holds kernel runtime configuration.
type Config struct {
	StorageBackend      StorageBackend
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	DatabaseURL         string
	LogLevel            string
	FederationEndpoint  string
}

// Load reads configuration from environment variables, falling back to
// single-process defaults suitable for local runs and tests.
func Load() *Config {
	backend := StorageBackend(os.Getenv("FCK_STORAGE_BACKEND"))
	if backend == "" {
		backend = StorageBackendMemory
	}

	redisAddr := os.Getenv("FCK_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	databaseURL := os.Getenv("FCK_DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "postgres://fck@localhost:5432/fck?sslmode=disable"
	}

	logLevel := os.Getenv("FCK_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	federationEndpoint := os.Getenv("FCK_FEDERATION_ENDPOINT")
	if federationEndpoint == "" {
		federationEndpoint = "http://localhost:9090/federation"
	}

	return &Config{
		StorageBackend:     backend,
		RedisAddr:          redisAddr,
		RedisPassword:      os.Getenv("FCK_REDIS_PASSWORD"),
		RedisDB:            0,
		DatabaseURL:        databaseURL,
		LogLevel:           logLevel,
		FederationEndpoint: federationEndpoint,
	}
}
