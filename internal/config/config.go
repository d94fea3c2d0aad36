// Package config loads server settings from the environment and .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSessionSecretBytes = 32

// Config holds every runtime setting of the server
type Config struct {
	DatabaseURL       string
	Port              string
	SessionSecret     string
	RedisURL          string
	MediaRoot         string
	Env               string
	IndexCacheTTL     time.Duration
	RateLimitWindow   time.Duration
	CacheSize         int
	PageSize          int
	RateLimitRequests int
	LogLevel          slog.Level
	SecureCookies     bool
}

// LoadDotEnvs loads .env files for the current YATUBE_ENV.
// Files loaded earlier win, since godotenv never overrides a set variable.
func LoadDotEnvs(rootPath string) {
	env := os.Getenv("YATUBE_ENV")
	if env == "" {
		env = "dev"
	}

	// .env.[env].local holds secrets and is never committed
	_ = godotenv.Load(rootPath + ".env." + env + ".local")
	_ = godotenv.Load(rootPath + ".env.local")
	_ = godotenv.Load(rootPath + ".env." + env)
	_ = godotenv.Load(rootPath + ".env")
}

// Load reads the configuration from the environment.
// Call LoadDotEnvs first to pick up .env files.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getEnv("APP_PORT", "8000"),
		RedisURL:    os.Getenv("REDIS_URL"),
		MediaRoot:   getEnv("MEDIA_ROOT", "media"),
		Env:         getEnv("YATUBE_ENV", "dev"),
	}
	cfg.SecureCookies = cfg.Env == "prod"

	var errs []error

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" && cfg.Env == "dev" {
		cfg.SessionSecret = "dev-only-session-secret-change-me!"
	}
	if len(cfg.SessionSecret) < minSessionSecretBytes {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretBytes))
	}

	var err error
	if cfg.IndexCacheTTL, err = getDuration("INDEX_CACHE_TTL", 20*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheSize, err = getPositiveInt("CACHE_SIZE", 1000); err != nil {
		errs = append(errs, err)
	}
	if cfg.PageSize, err = getPositiveInt("PAGE_SIZE", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitRequests, err = getPositiveInt("RATE_LIMIT_REQUESTS", 100); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getPositiveInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
