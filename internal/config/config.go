package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"fable2md/internal/logger"
)

// Config holds all runtime settings. Everything is sourced from the
// environment (a .env file is loaded by main) so the services stay
// injectable and testable.
type Config struct {
	// OpenAI Configuration
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float32
	LLMMaxAttempts    int

	// OCR Configuration
	OCRBackend   string // "tesseract" or "vision"
	OCRLanguage  string
	BandHeightPx int

	// Open Library Configuration
	SearchMinInterval time.Duration
	SearchMaxRetries  int
	SearchBackoffBase time.Duration
	SearchTimeout     time.Duration
	UserAgent         string

	// Output Configuration
	OutputDir string

	// Raindrop.io Configuration (optional)
	RaindropToken        string
	RaindropCollectionID int
	RaindropTags         string

	// Obsidian Configuration (optional)
	ObsidianVaultPath string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature:    parseFloatEnv("OPENAI_TEMPERATURE", 0.1),
		LLMMaxAttempts:       parseIntEnv("LLM_MAX_ATTEMPTS", 3),
		OCRBackend:           getEnv("OCR_BACKEND", "tesseract"),
		OCRLanguage:          getEnv("OCR_LANGUAGE", "eng"),
		BandHeightPx:         parseIntEnv("BAND_HEIGHT_PX", 8000),
		SearchMinInterval:    parseDurationEnv("SEARCH_MIN_INTERVAL", 2500*time.Millisecond),
		SearchMaxRetries:     parseIntEnv("SEARCH_MAX_RETRIES", 3),
		SearchBackoffBase:    parseDurationEnv("SEARCH_BACKOFF_BASE", time.Second),
		SearchTimeout:        parseDurationEnv("SEARCH_TIMEOUT", 15*time.Second),
		UserAgent:            getEnv("USER_AGENT", "fable2md/1.0 (book screenshot importer)"),
		OutputDir:            getEnv("OUTPUT_DIR", "output"),
		RaindropToken:        getEnv("RAINDROP_TOKEN", ""),
		RaindropCollectionID: parseIntEnv("RAINDROP_COLLECTION_ID", 0),
		RaindropTags:         getEnv("RAINDROP_TAGS", "books,fable"),
		ObsidianVaultPath:    getEnv("OBSIDIAN_VAULT_PATH", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.OCRBackend != "tesseract" && c.OCRBackend != "vision" {
		return fmt.Errorf("OCR_BACKEND must be \"tesseract\" or \"vision\", got %q", c.OCRBackend)
	}
	if c.BandHeightPx <= 0 {
		return fmt.Errorf("BAND_HEIGHT_PX must be positive")
	}
	if c.SearchMaxRetries <= 0 {
		return fmt.Errorf("SEARCH_MAX_RETRIES must be positive")
	}
	return nil
}

// RaindropEnabled reports whether Raindrop sync is configured.
func (c *Config) RaindropEnabled() bool {
	return c.RaindropToken != ""
}

// ObsidianEnabled reports whether Obsidian vault sync is configured.
func (c *Config) ObsidianEnabled() bool {
	return c.ObsidianVaultPath != ""
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

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
