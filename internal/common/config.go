package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Gemini   GeminiConfig
	Media    MediaConfig
	Dispatch DispatchConfig
}

// DatabaseConfig holds the local store configuration
type DatabaseConfig struct {
	Path string // SQLite file path; ":memory:" for ephemeral runs
}

// GeminiConfig holds the inference gateway configuration
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// MediaConfig holds the image ingestion pipeline configuration
type MediaConfig struct {
	MaxDimension   int     // longest side bound, px
	JPEGQuality    int     // 1..100
	MaxConcurrency int     // parallel ingestions per batch
	WatermarkText  string
	Opacity        float64 // 0..1
}

// DispatchConfig holds the campaign dispatcher configuration
type DispatchConfig struct {
	SendInterval time.Duration // pacing between consecutive sends
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("IMOVIA_DB_PATH", "./imovia.db"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			TextModel:   getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
			ImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			MaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 3),
			RetryDelay:  getEnvAsDuration("GEMINI_RETRY_DELAY", 2*time.Second),
		},
		Media: MediaConfig{
			MaxDimension:   getEnvAsInt("MEDIA_MAX_DIMENSION", 1200),
			JPEGQuality:    getEnvAsInt("MEDIA_JPEG_QUALITY", 60),
			MaxConcurrency: getEnvAsInt("MEDIA_MAX_CONCURRENCY", 4),
			WatermarkText:  getEnv("MEDIA_WATERMARK_TEXT", ""),
			Opacity:        getEnvAsFloat64("MEDIA_WATERMARK_OPACITY", 0.5),
		},
		Dispatch: DispatchConfig{
			SendInterval: getEnvAsDuration("DISPATCH_SEND_INTERVAL", 0),
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Media.MaxDimension <= 0 {
		return NewAppError("CONFIG_ERROR", "MEDIA_MAX_DIMENSION must be positive", ErrInvalidInput)
	}
	if c.Media.Opacity < 0 || c.Media.Opacity > 1 {
		return NewAppError("CONFIG_ERROR", "MEDIA_WATERMARK_OPACITY must be in [0,1]", ErrInvalidInput)
	}
	return nil
}
