// Package config loads reader settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Defaults applied to zero-valued fields.
const (
	DefaultPageWordBudget = 400
	DefaultViewMode       = "paginated"
	DefaultDriver         = "badger"
	DefaultStoragePath    = "epubreader-data"
	DefaultStorageKey     = "epubReaderData"
	DefaultCacheTTL       = 30 * time.Minute
	DefaultDebugLogSize   = 200
	DefaultLogLevel       = "info"
)

// Config is the reader configuration.
type Config struct {
	PageWordBudget int           `yaml:"pageWordBudget"`
	ViewMode       string        `yaml:"viewMode"`
	Storage        StorageConfig `yaml:"storage"`
	CacheTTL       time.Duration `yaml:"cacheTTL"`
	DebugLogSize   int           `yaml:"debugLogSize"`
	LogLevel       string        `yaml:"logLevel"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
}

// Default returns a Config with every field set to its default.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Load reads the YAML file at path and fills missing fields with defaults.
// A path that does not exist yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML data, applies defaults, and validates the result.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.PageWordBudget == 0 {
		c.PageWordBudget = DefaultPageWordBudget
	}
	if c.ViewMode == "" {
		c.ViewMode = DefaultViewMode
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultDriver
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultStorageKey
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.DebugLogSize == 0 {
		c.DebugLogSize = DefaultDebugLogSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.PageWordBudget < 0 {
		return fmt.Errorf("config: pageWordBudget must be positive, got %d", c.PageWordBudget)
	}
	switch c.ViewMode {
	case "paginated", "continuous":
	default:
		return fmt.Errorf("config: unknown viewMode %q", c.ViewMode)
	}
	switch c.Storage.Driver {
	case "badger", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: cacheTTL must not be negative, got %s", c.CacheTTL)
	}
	if c.DebugLogSize < 0 {
		return fmt.Errorf("config: debugLogSize must not be negative, got %d", c.DebugLogSize)
	}
	return nil
}
