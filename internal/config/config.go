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

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Validation ValidationConfig
	App        AppConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// ValidationConfig controls how submitted URLs are checked
type ValidationConfig struct {
	ResolveTimeout time.Duration
	AllowedSchemes []string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment   string
	LogLevel      string
	LogEncoding   string
	EnableMetrics bool
	ViewsDir      string
	PublicDir     string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first if present; variables already set in the
// environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			ShutdownTimeout: parseDuration("SHUTDOWN_TIMEOUT", "30s"),
			RequestTimeout:  parseDuration("REQUEST_TIMEOUT", "5s"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        parseInt("DB_MAX_CONNS", 25),
			MinConns:        parseInt("DB_MIN_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
			CacheTTL: parseDuration("REDIS_CACHE_TTL", "1h"),
		},
		Validation: ValidationConfig{
			ResolveTimeout: parseDuration("RESOLVE_TIMEOUT", "3s"),
			AllowedSchemes: parseList("ALLOWED_SCHEMES", []string{"http", "https"}),
		},
		App: AppConfig{
			Environment:   getEnv("APP_ENV", "development"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			LogEncoding:   getEnv("LOG_ENCODING", "json"),
			EnableMetrics: parseBool("ENABLE_METRICS", true),
			ViewsDir:      getEnv("VIEWS_DIR", "views"),
			PublicDir:     getEnv("PUBLIC_DIR", "public"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: invalid PORT %q", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	if c.Validation.ResolveTimeout <= 0 {
		return errors.New("config: RESOLVE_TIMEOUT must be positive")
	}
	if len(c.Validation.AllowedSchemes) == 0 {
		return errors.New("config: ALLOWED_SCHEMES must list at least one scheme")
	}
	if c.Database.MaxConns < 1 {
		return errors.New("config: DB_MAX_CONNS must be at least 1")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS must be between 0 and %d", c.Database.MaxConns)
	}
	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		return errors.New("config: REDIS_CACHE_TTL must be positive when Redis is enabled")
	}
	return nil
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// parseList splits a comma-separated variable, dropping empty items
func parseList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToLower(item))
		}
	}
	return items
}
