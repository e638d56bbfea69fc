package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// config is read once at startup from the environment (optionally seeded from .env).
type config struct {
	Port               string
	StoreDriver        string // postgres | sqlite
	DBURL              string
	SQLitePath         string
	JWTSecret          string
	CookieSecure       bool
	Location           *time.Location // default viewer zone for grouping and zoneless dates
	OpenAIBaseURL      string
	LoginRatePerMinute int
	LogLevel           string
	LogFormat          string // text | json
}

// loadConfig loads .env if present and validates the result.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		Port:          envOrDefault("PORT", "3000"),
		StoreDriver:   envOrDefault("STORE_DRIVER", "postgres"),
		DBURL:         os.Getenv("DB_URL"),
		SQLitePath:    envOrDefault("SQLITE_PATH", "calories.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") != "false",
		OpenAIBaseURL: envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.StoreDriver == "postgres" && cfg.DBURL == "" {
		return config{}, errors.New("DB_URL is required when STORE_DRIVER=postgres")
	}
	if len(cfg.JWTSecret) < 32 {
		return config{}, errors.New("JWT_SECRET must be set and at least 32 characters")
	}

	loc, err := time.LoadLocation(envOrDefault("APP_TIMEZONE", "Local"))
	if err != nil {
		return config{}, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.LoginRatePerMinute = 10
	if v := os.Getenv("LOGIN_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return config{}, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be a positive integer, got %q", v)
		}
		cfg.LoginRatePerMinute = n
	}
	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
