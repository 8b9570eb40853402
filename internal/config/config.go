// Package config provides configuration loading and structs for the
// Osusume server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/osusume/internal/diversity"
	"github.com/hyperjump/osusume/internal/personalize"
	"github.com/hyperjump/osusume/internal/scoring"
)

// Config holds all configuration for the application.
type Config struct {
	Debug           bool                              `yaml:"debug"`
	Server          ServerConfig                      `yaml:"server"`
	Storage         StorageConfig                     `yaml:"storage"`
	Embedding       EmbeddingConfig                   `yaml:"embedding"`
	Recommend       RecommendConfig                   `yaml:"recommend"`
	Scoring         scoring.ScoringConfig             `yaml:"scoring"`
	Diversity       diversity.DiversityConfig         `yaml:"diversity"`
	Personalization personalize.PersonalizationConfig `yaml:"personalization"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, cache and recall index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	CachePath      string `yaml:"cache_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// EmbeddingConfig holds ONNX embedder settings.
type EmbeddingConfig struct {
	ModelPath       string        `yaml:"model_path"`
	Dimensions      int           `yaml:"dimensions"`
	MaxTokens       int           `yaml:"max_tokens"`
	UseQuantization bool          `yaml:"use_quantization"`
	CacheSize       int           `yaml:"cache_size"`
	Timeout         time.Duration `yaml:"timeout"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	DefaultK         int           `yaml:"default_k"`
	MaxK             int           `yaml:"max_k"`
	PoolLimit        int           `yaml:"pool_limit"`
	ContextCacheTTL  time.Duration `yaml:"context_cache_ttl"`
	ResponseCacheTTL time.Duration `yaml:"response_cache_ttl"`
	RecallTitleBoost float64       `yaml:"recall_title_boost"`
	RecallFuzzy      bool          `yaml:"recall_fuzzy"`
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.CachePath = expandPath(cfg.Storage.CachePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
