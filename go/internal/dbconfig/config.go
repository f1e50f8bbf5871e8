package dbconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds Postgres connection settings, read from DB_* env vars.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewConfigFromEnv builds a Config from the environment, falling back to
// local-development defaults for anything unset.
func NewConfigFromEnv() Config {
	cfg := Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     5432,
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		Database: envOr("DB_NAME", "gully"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	}
	if p, err := strconv.Atoi(envOr("DB_PORT", "5432")); err == nil {
		cfg.Port = p
	}
	return cfg
}

// DSN renders the config as a postgres connection URL.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
