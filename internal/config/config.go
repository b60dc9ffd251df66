// Package config loads the reader's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "bibleread.yaml"

// Config holds all bibleread configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Storage StorageConfig `yaml:"storage"`
	Plan    PlanConfig    `yaml:"plan"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DataConfig points at the verse dataset and the static export directory.
type DataConfig struct {
	BiblePath string `yaml:"bible_path"` // .json or .json.gz
	StaticDir string `yaml:"static_dir"`
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// PlanPreset is a suggested plan length.
type PlanPreset struct {
	Label string `yaml:"label"`
	Days  int    `yaml:"days"`
}

// PlanConfig configures reading plan presets.
type PlanConfig struct {
	Presets []PlanPreset `yaml:"presets"`
}

// SearchConfig configures verse search.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Data: DataConfig{
			BiblePath: "data/bible.json",
			StaticDir: "data/static",
		},
		Storage: StorageConfig{DatabasePath: "data/reader.db"},
		Plan: PlanConfig{Presets: []PlanPreset{
			{Label: "90 days", Days: 90},
			{Label: "6 months", Days: 180},
			{Label: "1 year", Days: 365},
		}},
		Search:  SearchConfig{MaxResults: 100},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads the config at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BIBLEREAD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BIBLEREAD_BIBLE"); v != "" {
		c.Data.BiblePath = v
	}
	if v := os.Getenv("BIBLEREAD_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("BIBLEREAD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Data.BiblePath == "" {
		return errors.New("data.bible_path is required")
	}
	if c.Storage.DatabasePath == "" {
		return errors.New("storage.database_path is required")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	for _, p := range c.Plan.Presets {
		if p.Days <= 0 {
			return fmt.Errorf("plan preset %q: days must be positive, got %d", p.Label, p.Days)
		}
	}

	level := strings.ToLower(c.Logging.Level)
	valid := false
	for _, l := range ValidLogLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if f := c.Logging.Format; f != "json" && f != "console" {
		return fmt.Errorf("invalid logging.format: %s (valid: json, console)", f)
	}
	return nil
}
