// Package config loads newsdex configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete newsdex configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	API     APIConfig     `yaml:"api"`
	Rebuild RebuildConfig `yaml:"rebuild"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig configures the index directory layout.
type IndexConfig struct {
	// Dir is the base directory holding the per-category indexes.
	Dir string `yaml:"dir"`
	// StatsPath is the SQLite file recording rebuild statistics.
	StatsPath string `yaml:"stats_path"`
}

// APIConfig configures the item source client.
type APIConfig struct {
	// BaseURL is the Firebase REST endpoint.
	BaseURL string `yaml:"base_url"`
	// RequestsPerSecond caps outgoing item fetches. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RebuildConfig configures ingestion passes.
type RebuildConfig struct {
	// StoryLimit is the number of top-level items fetched per category.
	StoryLimit int `yaml:"story_limit"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// FilePath is the log file. Empty logs to stderr only.
	FilePath string `yaml:"file_path"`
}

// Default returns the built-in configuration. The index lives under the
// user cache directory so repeated runs reuse it.
func Default() *Config {
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}
	dataDir := filepath.Join(base, "newsdex")

	return &Config{
		Index: IndexConfig{
			Dir:       filepath.Join(dataDir, "index"),
			StatsPath: filepath.Join(dataDir, "stats.db"),
		},
		API: APIConfig{
			BaseURL:           "https://hacker-news.firebaseio.com/v0",
			RequestsPerSecond: 0,
		},
		Rebuild: RebuildConfig{
			StoryLimit: 75,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies NEWSDEX_* environment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NEWSDEX_INDEX_DIR"); v != "" {
		cfg.Index.Dir = v
	}
	if v := os.Getenv("NEWSDEX_STATS_PATH"); v != "" {
		cfg.Index.StatsPath = v
	}
	if v := os.Getenv("NEWSDEX_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("NEWSDEX_STORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rebuild.StoryLimit = n
		}
	}
	if v := os.Getenv("NEWSDEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Index.Dir == "" {
		return fmt.Errorf("index.dir must not be empty")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.Rebuild.StoryLimit <= 0 {
		return fmt.Errorf("rebuild.story_limit must be positive, got %d", c.Rebuild.StoryLimit)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative")
	}
	return nil
}
