package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the auth service configuration, loaded from AUTH_* environment
// variables. The signing secret, both token lifetimes and the user service
// address have no defaults: a process without them must not start.
type Config struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	PostgresDSN string

	UserServiceURL  string
	ProviderTimeout time.Duration

	TokenSecret string
	TokenIssuer string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getEnv("AUTH_HTTP_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("AUTH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("AUTH_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("AUTH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("AUTH_SHUTDOWN_TIMEOUT", 10*time.Second),

		PostgresDSN: getEnv("AUTH_PG_DSN", ""),

		UserServiceURL:  getEnv("AUTH_USER_SERVICE_URL", ""),
		ProviderTimeout: getEnvDuration("AUTH_PROVIDER_TIMEOUT", 10*time.Second),

		TokenSecret: getEnv("AUTH_TOKEN_SECRET", ""),
		TokenIssuer: getEnv("AUTH_TOKEN_ISSUER", "shopauth"),
		AccessTTL:   getEnvDuration("AUTH_ACCESS_TTL", 0),
		RefreshTTL:  getEnvDuration("AUTH_REFRESH_TTL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports the first fatal misconfiguration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TokenSecret) == "" {
		return errors.New("AUTH_TOKEN_SECRET is required")
	}
	if c.AccessTTL <= 0 {
		return errors.New("AUTH_ACCESS_TTL is required and must be a positive duration")
	}
	if c.RefreshTTL <= 0 {
		return errors.New("AUTH_REFRESH_TTL is required and must be a positive duration")
	}
	if strings.TrimSpace(c.PostgresDSN) == "" {
		return errors.New("AUTH_PG_DSN is required")
	}
	if strings.TrimSpace(c.UserServiceURL) == "" {
		return errors.New("AUTH_USER_SERVICE_URL is required")
	}
	if _, err := url.Parse(c.UserServiceURL); err != nil {
		return fmt.Errorf("AUTH_USER_SERVICE_URL is not a valid URL: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
