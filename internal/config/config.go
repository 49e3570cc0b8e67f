package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cardiorisk/internal/errors"
)

// Dataset source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Data      DataConfig
	Models    ModelsConfig
	Database  DatabaseConfig
	Metrics   MetricsConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds dashboard web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// APIConfig holds JSON API server settings
type APIConfig struct {
	Port         string
	RateLimit    float64 // requests per second, 0 disables limiting
	RateBurst    int
	WriteTimeout time.Duration
}

// DataConfig holds dataset location settings
type DataConfig struct {
	Source string // "file", "postgres" or "sqlite"
	File   string
	Table  string
}

// ModelsConfig holds model artifact settings
type ModelsConfig struct {
	Dir string
}

// DatabaseConfig holds database connection settings for the postgres and sqlite sources
type DatabaseConfig struct {
	URL            string
	ConnectRetries int
	SQLitePath     string
}

// MetricsConfig holds Prometheus exposure settings
type MetricsConfig struct {
	Enabled bool
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		API:       *loadAPIConfig(),
		Data:      *loadDataConfig(),
		Models:    ModelsConfig{Dir: getEnvOrDefault("MODELS_DIR", "data/models")},
		Database:  *loadDatabaseConfig(),
		Metrics:   MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadAPIConfig() *APIConfig {
	return &APIConfig{
		Port:         getEnvOrDefault("API_PORT", "8090"),
		RateLimit:    getEnvFloatOrDefault("API_RATE_LIMIT", 20),
		RateBurst:    getEnvIntOrDefault("API_RATE_BURST", 40),
		WriteTimeout: getEnvDurationOrDefault("API_WRITE_TIMEOUT", 15*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source: strings.ToLower(getEnvOrDefault("DATASET_SOURCE", SourceFile)),
		File:   getEnvOrDefault("DATASET_FILE", "data/heart-disease.csv"),
		Table:  getEnvOrDefault("DATASET_TABLE", "heart_disease"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:            os.Getenv("DATABASE_URL"),
		ConnectRetries: getEnvIntOrDefault("DB_CONNECT_RETRIES", 5),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "data/heart-disease.db"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.File == "" {
			return errors.ConfigInvalid("DATASET_FILE is required for the file dataset source")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres dataset source")
		}
		if config.Data.Table == "" {
			return errors.ConfigInvalid("DATASET_TABLE is required for the postgres dataset source")
		}
	case SourceSQLite:
		if config.Database.SQLitePath == "" {
			return errors.ConfigInvalid("SQLITE_PATH is required for the sqlite dataset source")
		}
		if config.Data.Table == "" {
			return errors.ConfigInvalid("DATASET_TABLE is required for the sqlite dataset source")
		}
	default:
		return errors.ConfigInvalid("DATASET_SOURCE must be file, postgres or sqlite, got " + config.Data.Source)
	}
	if config.Models.Dir == "" {
		return errors.ConfigInvalid("MODELS_DIR is required")
	}
	if config.API.RateLimit < 0 {
		return errors.ConfigInvalid("API_RATE_LIMIT cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
