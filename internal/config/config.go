// Package config reads mailcal configuration from the environment.
package config

import (
	"os"
	"strconv"

	"mailcal/internal/match"
)

// Config holds all mailcal configuration.
type Config struct {
	Model ModelConfig
	Match MatchConfig
	Sync  SyncConfig
}

// ModelConfig holds Ollama runtime settings.
type ModelConfig struct {
	Host       string
	TextModel  string
	EmbedModel string
}

// MatchConfig holds entity-matching settings.
type MatchConfig struct {
	Threshold float64
}

// SyncConfig holds Gmail sync settings.
type SyncConfig struct {
	MaxResults  int64
	IncludeSpam bool
}

// Load reads configuration from environment variables with sensible
// defaults. Callers load .env files before calling this.
func Load() Config {
	return Config{
		Model: ModelConfig{
			Host:       getenv("MAILCAL_OLLAMA_HOST", "http://localhost:11434"),
			TextModel:  getenv("MAILCAL_TEXT_MODEL", "llama3.2"),
			EmbedModel: getenv("MAILCAL_EMBED_MODEL", "nomic-embed-text"),
		},
		Match: MatchConfig{
			Threshold: getenvFloat("MAILCAL_MATCH_THRESHOLD", match.DefaultThreshold),
		},
		Sync: SyncConfig{
			MaxResults:  getenvInt("MAILCAL_SYNC_MAX", 100),
			IncludeSpam: os.Getenv("MAILCAL_SYNC_SPAM") == "1",
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
