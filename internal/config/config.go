package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"studyviz/internal/aggregation"
	"studyviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Database  DatabaseConfig
	Dashboard DashboardConfig
	Stream    StreamConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds the dataset source. An empty File selects the built-in
// synthetic dataset.
type DataConfig struct {
	File           string
	Sheet          string
	SyntheticCount int
	SyntheticSeed  int64
}

// DatabaseConfig holds the saved view store. An empty URL keeps saved views
// in memory.
type DatabaseConfig struct {
	URL string
}

// DashboardConfig holds the initial view parameters of a new session.
type DashboardConfig struct {
	HistogramMeasure  string
	HistogramBins     int
	HistogramMin      float64
	HistogramMax      float64
	BoxPlotGroup      string
	BoxPlotMeasure    string
	PrimaryGrouping   string
	SecondaryGrouping string
	MaxPins           int
}

// StreamConfig holds push transport settings
type StreamConfig struct {
	KeepAlive  time.Duration
	BufferSize int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Database:  DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Dashboard: *loadDashboardConfig(),
		Stream:    *loadStreamConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:           getEnvOrDefault("DATASET_FILE", ""),
		Sheet:          getEnvOrDefault("DATASET_SHEET", "Sheet1"),
		SyntheticCount: getEnvIntOrDefault("SYNTHETIC_STUDENTS", 1000),
		SyntheticSeed:  int64(getEnvIntOrDefault("SYNTHETIC_SEED", 42)),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		HistogramMeasure:  getEnvOrDefault("HISTOGRAM_MEASURE", "exam_score"),
		HistogramBins:     getEnvIntOrDefault("HISTOGRAM_BINS", 10),
		HistogramMin:      getEnvFloatOrDefault("HISTOGRAM_DOMAIN_MIN", 0),
		HistogramMax:      getEnvFloatOrDefault("HISTOGRAM_DOMAIN_MAX", 100),
		BoxPlotGroup:      getEnvOrDefault("BOXPLOT_GROUP", "internet_quality"),
		BoxPlotMeasure:    getEnvOrDefault("BOXPLOT_MEASURE", "exam_score"),
		PrimaryGrouping:   getEnvOrDefault("PRIMARY_GROUPING", "study_hours_per_day"),
		SecondaryGrouping: getEnvOrDefault("SECONDARY_GROUPING", "sleep_hours"),
		MaxPins:           getEnvIntOrDefault("MAX_PINS", 10),
	}
}

func loadStreamConfig() *StreamConfig {
	return &StreamConfig{
		KeepAlive:  getEnvDurationOrDefault("SSE_KEEPALIVE", 30*time.Second),
		BufferSize: getEnvIntOrDefault("STREAM_BUFFER", 64),
	}
}

// Validate rejects settings no session could start with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if c.Dashboard.HistogramBins < 1 || c.Dashboard.HistogramBins > aggregation.MaxBinCount {
		return errors.ConfigInvalid(fmt.Sprintf("HISTOGRAM_BINS must be between 1 and %d", aggregation.MaxBinCount))
	}
	if !(c.Dashboard.HistogramMin < c.Dashboard.HistogramMax) {
		return errors.ConfigInvalid("HISTOGRAM_DOMAIN_MIN must be below HISTOGRAM_DOMAIN_MAX")
	}
	if c.Dashboard.MaxPins < 1 {
		return errors.ConfigInvalid("MAX_PINS must be at least 1")
	}
	if c.Data.File == "" && c.Data.SyntheticCount < 1 {
		return errors.ConfigInvalid("SYNTHETIC_STUDENTS must be at least 1 when no DATASET_FILE is set")
	}
	if c.Stream.KeepAlive <= 0 {
		return errors.ConfigInvalid("SSE_KEEPALIVE must be positive")
	}
	if c.Stream.BufferSize < 1 {
		return errors.ConfigInvalid("STREAM_BUFFER must be at least 1")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
