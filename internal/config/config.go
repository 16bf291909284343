package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultAPIBaseURL is the local development backend used when no base URL is configured.
const DefaultAPIBaseURL = "http://localhost:3977/api"

// Storage backends for console client storage.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	Port              string
	FrontendURL       string
	APIBaseURL        string
	ConsoleSecret     string
	SessionCookieName string
	SessionTTL        time.Duration
	RateLimitRPS      float64
	StorageBackend    string
	DatabaseURL       string
	RedisURL          string
	StorageTTL        time.Duration
	SessionFile       string
	LogLevel          string
	Env               string
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		APIBaseURL:        getEnv("CASTELLA_API_BASE_URL", getEnv("VITE_API_BASE_URL", DefaultAPIBaseURL)),
		ConsoleSecret:     getEnv("CONSOLE_SECRET", "change-me"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "castella_console"),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		RateLimitRPS:      getFloat("RATE_LIMIT_RPS", 10),
		StorageBackend:    getEnv("SESSION_BACKEND", StorageMemory),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		StorageTTL:        getDuration("STORAGE_TTL", 30*24*time.Hour),
		SessionFile:       getEnv("CASTELLA_SESSION_FILE", defaultSessionFile()),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Env:               getEnv("CASTELLA_ENV", "production"),
	}
}

// defaultSessionFile places the CLI session next to other per-user configuration.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".castella", "session.json")
	}
	return filepath.Join(dir, "castella", "session.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
