package config

import (
	"fmt"
	"os"
	"strings"

	"billing-engine/internal/logger"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory       = "memory"
	DriverSQLite       = "sqlite"
	DriverPostgres     = "postgres"
	DriverGormPostgres = "gorm-postgres"
)

type Config struct {
	// Storage
	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	Migrations  bool
	DBDebug     bool

	// HTTP server
	ServerPort     string
	AllowedOrigins string

	// Invoices
	RequireInvoiceCustomer bool

	// Scheduled balance digest; empty disables it
	ReportSchedule string

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		SQLitePath:             getEnv("SQLITE_PATH", "billing.db"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		Migrations:             getBool("MIGRATIONS"),
		DBDebug:                getBool("DB_DEBUG"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:         getEnv("ALLOWED_ORIGINS", ""),
		RequireInvoiceCustomer: getBool("REQUIRE_INVOICE_CUSTOMER"),
		ReportSchedule:         getEnv("REPORT_SCHEDULE", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:          getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:              getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres, DriverGormPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (memory, sqlite, postgres, gorm-postgres)", c.StoreDriver)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
