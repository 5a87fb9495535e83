package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/camilorojas87/mixtaped/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port       string
	DBPath     string
	SourceURL  string // remote song source base URL
	LibraryDir string // optional local library; used instead of SourceURL when set
	LogLevel   string
	LogFormat  string
	RandomSeed int64 // 0 means seed from the clock
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is honored but never overrides
// variables already present in the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:       getEnv("PORT", constants.DefaultPort),
		DBPath:     getEnv("DB_PATH", constants.DefaultDBPath),
		SourceURL:  getEnv("SOURCE_URL", constants.DefaultSourceURL),
		LibraryDir: getEnv("LIBRARY_DIR", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		RandomSeed: getEnvInt64("RANDOM_SEED", 0),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate DBPath
	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Either a remote source or a local library must be configured
	if c.SourceURL == "" && c.LibraryDir == "" {
		errors = append(errors, "one of SOURCE_URL or LIBRARY_DIR must be set")
	}
	if c.SourceURL != "" {
		if _, err := url.Parse(c.SourceURL); err != nil {
			errors = append(errors, fmt.Sprintf("SOURCE_URL is not a valid URL: %s", c.SourceURL))
		}
	}
	if c.LibraryDir != "" {
		if info, err := os.Stat(c.LibraryDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("LIBRARY_DIR is not a readable directory: %s", c.LibraryDir))
		}
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt64 retrieves an integer environment variable with a fallback default
func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
