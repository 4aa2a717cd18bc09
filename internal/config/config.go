// Package config provides configuration loading and structs for the portalsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/portalsearch/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
}

// WatchConfig holds the import directories whose collection files are loaded into storage.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig holds engine defaults and per-collection field profiles.
type SearchConfig struct {
	DefaultLimit      int                         `yaml:"default_limit"`
	MaxLimit          int                         `yaml:"max_limit"`
	GlobalConcurrency int                         `yaml:"global_concurrency"`
	GlobalCollections []string                    `yaml:"global_collections"`
	Collections       map[string]CollectionConfig `yaml:"collections"`
}

// CollectionConfig is the search profile of one collection.
type CollectionConfig struct {
	models.SearchConfig `yaml:",inline"`
	Facets              []string `yaml:"facets"`
	SuggestionFields    []string `yaml:"suggestion_fields"`
}

// HistoryConfig holds search history and popular-term settings.
type HistoryConfig struct {
	MaxEntries     int   `yaml:"max_entries"`
	PopularLimit   int   `yaml:"popular_limit"`
	MinTermLength  int   `yaml:"min_term_length"`
	RecordSearches *bool `yaml:"record_searches"`
}

// RecordSearchesOrDefault returns whether served searches are recorded; defaults to true.
func (h *HistoryConfig) RecordSearchesOrDefault() bool {
	if h.RecordSearches != nil {
		return *h.RecordSearches
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies defaults and validates.
// Returns an error if the file cannot be read, parsed, or is invalid.
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
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
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

// Validate checks limits and collection profiles.
func Validate(cfg *Config) error {
	if cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	for name, col := range cfg.Search.Collections {
		if len(col.Fields) == 0 {
			return fmt.Errorf("search.collections.%s: fields must not be empty", name)
		}
		for field, b := range col.Boost {
			if b <= 0 {
				return fmt.Errorf("search.collections.%s.boost.%s must be positive, got %v", name, field, b)
			}
		}
	}
	for _, name := range cfg.Search.GlobalCollections {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("search.global_collections contains an empty name")
		}
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" is kept as is.
func expandPath(path string, configDir string) string {
	if path == ":memory:" || filepath.IsAbs(path) {
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
