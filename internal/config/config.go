// Package config provides configuration loading and structs for the Miru server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/miru/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Corpus CorpusConfig `yaml:"corpus"`
	Search SearchConfig `yaml:"search"`
	VLM    VLMConfig    `yaml:"vlm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds the corpus location and indexing settings.
type CorpusConfig struct {
	Root         string   `yaml:"root"`
	Extensions   []string `yaml:"extensions"`
	SnapshotPath string   `yaml:"snapshot_path"`
	Watch        *bool    `yaml:"watch"`
	TempDir      string   `yaml:"temp_dir"`
}

// WatchOrDefault returns whether to rebuild on corpus changes; defaults to
// true when unset.
func (c *CorpusConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// SearchConfig holds scoring and pagination settings.
type SearchConfig struct {
	DefaultLimit        int                    `yaml:"default_limit"`
	MaxLimit            int                    `yaml:"max_limit"`
	CandidateCap        int                    `yaml:"candidate_cap"`
	SimilarityThreshold float64                `yaml:"similarity_threshold"`
	FastWeight          float64                `yaml:"fast_weight"`
	VLMWeight           float64                `yaml:"vlm_weight"`
	Ranking             *ranking.RankingConfig `yaml:"ranking"`
}

// VLMConfig holds the image analysis backend settings. Rerank is off when
// Enabled is false; searches then use the keyword filter alone.
type VLMConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Workers        int     `yaml:"workers"`
	CacheSize      int     `yaml:"cache_size"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
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
	cfg.Corpus.Root = expandPath(cfg.Corpus.Root, configDir)
	cfg.Corpus.SnapshotPath = expandPath(cfg.Corpus.SnapshotPath, configDir)
	if cfg.Corpus.TempDir != "" {
		cfg.Corpus.TempDir = expandPath(cfg.Corpus.TempDir, configDir)
	}

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

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
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
