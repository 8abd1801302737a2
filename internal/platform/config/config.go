// Package config loads application configuration from environment variables.
// All variables use the QMAP_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	AI       AIConfig
	OCR      OCRConfig
	Analyze  AnalyzeConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL keeps
// analysis runs in memory only.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// match-result cache.
type CacheConfig struct {
	URL string
}

// AIConfig holds configuration for the optional text-generation providers.
type AIConfig struct {
	Google GoogleConfig
	Ollama OllamaConfig
	Model  string // optional model override for the matching prompt
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
}

// OCRConfig holds text-extraction settings.
type OCRConfig struct {
	// TesseractCmd is the explicit path to the tesseract binary. Empty means
	// look it up from TESSERACT_CMD, PATH, and common install locations.
	TesseractCmd string
}

// AnalyzeConfig holds per-run analysis limits.
type AnalyzeConfig struct {
	MaxQuestions int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with QMAP_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("QMAP_SERVER_PORT", 8080),
			Host: envStr("QMAP_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("QMAP_DATABASE_URL", ""),
			MaxConns: envInt("QMAP_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("QMAP_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL: envStr("QMAP_CACHE_URL", ""),
		},
		AI: AIConfig{
			Google: GoogleConfig{
				APIKey: envStr("QMAP_AI_GOOGLE_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("QMAP_AI_OLLAMA_ENABLED", false),
				URL:     envStr("QMAP_AI_OLLAMA_URL", "http://localhost:11434"),
			},
			Model: envStr("QMAP_AI_MODEL", ""),
		},
		OCR: OCRConfig{
			TesseractCmd: envStr("QMAP_OCR_TESSERACT_CMD", ""),
		},
		Analyze: AnalyzeConfig{
			MaxQuestions: envInt("QMAP_ANALYZE_MAX_QUESTIONS", 200),
		},
		Log: LogConfig{
			Level:  envStr("QMAP_LOG_LEVEL", "info"),
			Format: envStr("QMAP_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent. No AI
// provider is required: without one the matcher runs heuristic-only.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("QMAP_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Analyze.MaxQuestions <= 0 {
		return fmt.Errorf("QMAP_ANALYZE_MAX_QUESTIONS must be positive, got %d", c.Analyze.MaxQuestions)
	}
	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.Google.APIKey != "" || c.AI.Ollama.Enabled
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
