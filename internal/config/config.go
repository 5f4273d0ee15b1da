package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	AdminTokenSecret   string
	AdminSessionTTL    time.Duration
	CORSAllowedOrigins []string

	// Sync is optional: when Endpoint or StoreKey is empty the terminal
	// operates local-only.
	SyncEndpoint     string
	SyncStoreKey     string
	SyncDebounce     time.Duration
	SyncPollInterval time.Duration

	UnlockRateWindow time.Duration
	UnlockRateMax    int

	ReportOptionCount int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		AdminTokenSecret:   k.String("ADMIN_TOKEN_SECRET"),
		AdminSessionTTL:    parseDuration(k.String("ADMIN_SESSION_TTL"), "30m"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		SyncEndpoint:       strings.TrimSpace(k.String("SYNC_ENDPOINT")),
		SyncStoreKey:       strings.TrimSpace(k.String("SYNC_STORE_KEY")),
		SyncDebounce:       parseDuration(k.String("SYNC_DEBOUNCE"), "1500ms"),
		SyncPollInterval:   parseDuration(k.String("SYNC_POLL_INTERVAL"), "0s"),
		UnlockRateWindow:   parseDuration(k.String("UNLOCK_RATE_WINDOW"), "1m"),
		UnlockRateMax:      intOrDefault(k.Int("UNLOCK_RATE_MAX"), 10),
		ReportOptionCount:  intOrDefault(k.Int("REPORT_OPTION_COUNT"), 12),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.AdminTokenSecret == "" {
		return nil, errors.New("ADMIN_TOKEN_SECRET is required")
	}

	return cfg, nil
}

// SyncEnabled reports whether the remote sync collaborator is configured.
// Absence of configuration degrades silently to local-only operation.
func (c *Config) SyncEnabled() bool {
	return c.SyncEndpoint != "" && c.SyncStoreKey != ""
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func intOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
