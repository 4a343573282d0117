package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Templates TemplatesConfig
	Pipeline  PipelineConfig
}

// DatabaseConfig holds archive database configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// TemplatesConfig points at the template definitions file
type TemplatesConfig struct {
	Path string
}

// PipelineConfig holds pipeline-level knobs; the YAML options file
// (OptionsPath) refines normalization details when present.
type PipelineConfig struct {
	OptionsPath     string
	DefaultCurrency string
	MinConfidence   float64
	Concurrency     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Templates: TemplatesConfig{
			Path: getEnv("TEMPLATES_PATH", "./templates.json"),
		},
		Pipeline: PipelineConfig{
			OptionsPath:     getEnv("PIPELINE_OPTIONS_PATH", ""),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "EUR"),
			MinConfidence:   getEnvAsFloat64("MATCH_MIN_CONFIDENCE", 0),
			Concurrency:     getEnvAsInt("PIPELINE_CONCURRENCY", 4),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewConfigError("DB_URL is required", ErrInvalidInput)
	}
	if c.Templates.Path == "" {
		return NewConfigError("TEMPLATES_PATH is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewConfigError("HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
