// Package config loads process configuration from the environment so main
// stays lean. A .env file, when present, is loaded by the entry point before
// FromEnv runs.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Postgres captures connection and pool settings for the backing store.
// An empty URL selects the in-memory store (development only).
type Postgres struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// Redis captures the optional read-cache settings. An empty URL disables
// caching entirely.
type Redis struct {
	URL      string
	CacheTTL time.Duration
}

// FromEnv builds the configuration from PLANTAS_* environment variables,
// falling back to development defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getString("PLANTAS_ADDR", ":8080"),
			RequestTimeout:  getDuration("PLANTAS_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("PLANTAS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			URL:            os.Getenv("PLANTAS_DATABASE_URL"),
			MaxConns:       int32(getInt("PLANTAS_DB_MAX_CONNS", 10)),
			MinConns:       int32(getInt("PLANTAS_DB_MIN_CONNS", 2)),
			ConnectTimeout: getDuration("PLANTAS_DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		Redis: Redis{
			URL:      os.Getenv("PLANTAS_REDIS_URL"),
			CacheTTL: getDuration("PLANTAS_CACHE_TTL", 5*time.Minute),
		},
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
