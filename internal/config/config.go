// Package config loads and validates seqdex configuration.
//
// Precedence, lowest to highest: built-in defaults, user config
// (~/.config/seqdex/config.yaml), project config (./seqdex.yaml),
// environment variables (SEQDEX_*).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete seqdex configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// IndexConfig configures the derived index structures.
type IndexConfig struct {
	// K is the k-mer length used by the substring index.
	// Sequences shorter than K are indexed as a single whole-sequence token.
	K int `yaml:"k" json:"k"`

	// CaseSensitive controls the normalization policy. When false,
	// exact-match keys and k-mers are case-folded; the same folding is
	// applied to incoming query patterns.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// NameIndex enables the bleve metadata index over names and tags.
	NameIndex bool `yaml:"name_index" json:"name_index"`
}

// SearchConfig configures the query engine.
type SearchConfig struct {
	// FuzzyThreshold is the minimum acceptable similarity score for
	// fuzzy mode results (0.0-1.0).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`

	// MaxResults caps the number of results returned per query.
	// 0 means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// CacheSize is the number of query results kept in the LRU cache.
	// 0 disables caching.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// StorageConfig configures the canonical sequence store.
type StorageConfig struct {
	// Backend selects the store implementation: "sqlite" or "memory".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the data directory holding the database, the name index
	// and the data-dir lock. Defaults to ~/.seqdex.
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			K:             3,
			CaseSensitive: false,
			NameIndex:     true,
		},
		Search: SearchConfig{
			FuzzyThreshold: 0.5,
			MaxResults:     50,
			CacheSize:      256,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    defaultDataDir(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultDataDir returns the default data directory (~/.seqdex).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".seqdex")
	}
	return filepath.Join(home, ".seqdex")
}

// UserConfigPath returns the path to the user configuration file,
// honoring XDG_CONFIG_HOME.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "seqdex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "seqdex", "config.yaml")
	}
	return filepath.Join(home, ".config", "seqdex", "config.yaml")
}

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = "seqdex.yaml"

// Load builds the effective configuration. An explicit path, when
// non-empty, replaces the user and project files entirely.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	if explicit != "" {
		if err := mergeFile(cfg, explicit); err != nil {
			return nil, err
		}
	} else {
		if err := mergeOptional(cfg, UserConfigPath()); err != nil {
			return nil, err
		}
		if err := mergeOptional(cfg, ProjectConfigName); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeOptional merges a YAML file into cfg if it exists.
func mergeOptional(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return mergeFile(cfg, path)
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides selected options from SEQDEX_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SEQDEX_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Index.K = k
		}
	}
	if v := os.Getenv("SEQDEX_FUZZY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.FuzzyThreshold = f
		}
	}
	if v := os.Getenv("SEQDEX_CASE_SENSITIVE"); v != "" {
		cfg.Index.CaseSensitive = isTruthy(v)
	}
	if v := os.Getenv("SEQDEX_DATA_DIR"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SEQDEX_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SEQDEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Index.K < 1 {
		return fmt.Errorf("index.k must be >= 1, got %d", c.Index.K)
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("search.fuzzy_threshold must be in [0,1], got %g", c.Search.FuzzyThreshold)
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be >= 0, got %d", c.Search.MaxResults)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must be >= 0, got %d", c.Search.CacheSize)
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend must be \"sqlite\" or \"memory\", got %q", c.Storage.Backend)
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DatabasePath returns the sequence database location inside the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.Path, "sequences.db")
}

// NameIndexPath returns the bleve name index location inside the data dir.
func (c *Config) NameIndexPath() string {
	return filepath.Join(c.Storage.Path, "names.bleve")
}
