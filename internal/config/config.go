package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	// AllowedOrigins lists storefront and admin hosts accepted by CORS.
	AllowedOrigins []string

	DB         DatabaseConfig
	Redis      RedisConfig
	Worker     WorkerConfig
	Scheduling SchedulingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	StockResetInterval time.Duration
	StockSyncInterval  time.Duration
}

// SchedulingConfig tunes slot generation and the store-local calendar.
type SchedulingConfig struct {
	Timezone     string
	SlotInterval time.Duration
	LeadTime     time.Duration
	DaysAhead    int
}

// CacheConfig contains TTLs of cached computations.
type CacheConfig struct {
	SlotTTL time.Duration
}

// RateLimitConfig bounds order placements per client IP.
type RateLimitConfig struct {
	OrdersPerWindow int
	Window          time.Duration
}

// Location resolves the configured store time zone.
func (c SchedulingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	var err error

	// Workers (durations)
	if cfg.Worker.StockResetInterval, err = parseDurationEnv("STOCK_RESET_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid STOCK_RESET_INTERVAL: %w", err)
	}
	if cfg.Worker.StockSyncInterval, err = parseDurationEnv("STOCK_SYNC_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid STOCK_SYNC_INTERVAL: %w", err)
	}

	// Scheduling
	cfg.Scheduling.Timezone = getEnv("STORE_TIMEZONE", "America/Sao_Paulo")
	if cfg.Scheduling.SlotInterval, err = parseDurationEnv("SLOT_INTERVAL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid SLOT_INTERVAL: %w", err)
	}
	if cfg.Scheduling.LeadTime, err = parseDurationEnv("SLOT_LEAD_TIME", "60m"); err != nil {
		return nil, fmt.Errorf("invalid SLOT_LEAD_TIME: %w", err)
	}
	cfg.Scheduling.DaysAhead = getEnvInt("SLOT_DAYS_AHEAD", 7)

	// Cache
	if cfg.Cache.SlotTTL, err = parseDurationEnv("SLOT_CACHE_TTL", "2m"); err != nil {
		return nil, fmt.Errorf("invalid SLOT_CACHE_TTL: %w", err)
	}

	// Rate limit
	cfg.RateLimit.OrdersPerWindow = getEnvInt("ORDER_RATE_LIMIT", 10)
	if cfg.RateLimit.Window, err = parseDurationEnv("ORDER_RATE_WINDOW", "1m"); err != nil {
		return nil, fmt.Errorf("invalid ORDER_RATE_WINDOW: %w", err)
	}

	if cfg.Worker.StockResetInterval == 0 || cfg.Worker.StockSyncInterval == 0 {
		return nil, errors.New("worker intervals must be greater than zero")
	}
	if cfg.RateLimit.OrdersPerWindow > 0 && cfg.RateLimit.Window == 0 {
		return nil, errors.New("ORDER_RATE_WINDOW must be greater than zero")
	}
	if cfg.Scheduling.SlotInterval < time.Minute {
		return nil, errors.New("SLOT_INTERVAL must be at least 1m")
	}
	if _, err := cfg.Scheduling.Location(); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE: %w", err)
	}

	// Basic validation for DB parameters.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList parses a comma-separated variable, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
