package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Backing store configuration
	Store StoreConfig

	// Feed configuration
	Feed FeedConfig

	// Logging configuration
	Log LogConfig
}

// StoreConfig holds backing file settings
type StoreConfig struct {
	DataFile      string
	WriteQueue    int
	WriteRetryMax uint64
}

// FeedConfig holds feed and audit read settings
type FeedConfig struct {
	AuditFeedCap int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			DataFile:      getEnv("DATA_FILE", "./data/state.json"),
			WriteQueue:    getIntEnv("WRITE_QUEUE_DEPTH", 64),
			WriteRetryMax: uint64(getIntEnv("WRITE_RETRY_MAX", 3)),
		},
		Feed: FeedConfig{
			AuditFeedCap: getIntEnv("AUDIT_FEED_CAP", 100),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.DataFile == "" {
		return fmt.Errorf("DATA_FILE is required")
	}
	if c.Store.WriteQueue < 1 {
		return fmt.Errorf("WRITE_QUEUE_DEPTH must be at least 1")
	}
	if c.Feed.AuditFeedCap < 1 {
		return fmt.Errorf("AUDIT_FEED_CAP must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
