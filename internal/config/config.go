// Package config loads jarscan settings from a TOML or YAML file.
//
// The format is chosen by file extension. Values missing from the file keep
// their defaults; command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/meigma/jarscan"
)

// ErrUnknownFormat is returned for config files that are neither TOML
// nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config holds loader and cache settings.
type Config struct {
	// Workers is the number of libraries loaded in parallel. 0 uses the
	// number of CPUs.
	Workers int `toml:"workers" yaml:"workers"`

	// Timeout bounds the wait for library loads, e.g. "90s".
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`

	// Policy is "lenient" or "strict".
	Policy string `toml:"policy" yaml:"policy"`

	// Digest is "sha256" or "blake3".
	Digest string `toml:"digest" yaml:"digest"`

	// ClassLoader is the initial class loader label of decoded classes.
	ClassLoader string `toml:"class_loader" yaml:"class_loader"`

	// MaxEntrySize limits the uncompressed size of one entry. 0 disables
	// the limit.
	MaxEntrySize uint64 `toml:"max_entry_size" yaml:"max_entry_size"`

	Cache CacheConfig `toml:"cache" yaml:"cache"`
}

// CacheConfig configures the inventory cache.
type CacheConfig struct {
	// Enabled turns the cache on.
	Enabled bool `toml:"enabled" yaml:"enabled"`

	// Dir is the cache directory. Empty uses DefaultCacheDir.
	Dir string `toml:"dir" yaml:"dir"`

	// MaxBytes caps the cache size. 0 means unlimited.
	MaxBytes int64 `toml:"max_bytes" yaml:"max_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout:      jarscan.DefaultWarTimeout,
		Policy:       jarscan.Lenient.String(),
		Digest:       "sha256",
		ClassLoader:  jarscan.DefaultClassLoader,
		MaxEntrySize: jarscan.DefaultMaxEntrySize,
	}
}

// Load reads the config file at path over the defaults. An empty path
// returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be >= 0, got %s", c.Timeout))
	}
	if _, ok := jarscan.ParseFailurePolicy(c.Policy); !ok {
		errs = append(errs, fmt.Errorf("unknown policy %q", c.Policy))
	}
	if _, ok := jarscan.DigesterFor(c.Digest); !ok {
		errs = append(errs, fmt.Errorf("unknown digest algorithm %q", c.Digest))
	}
	if c.Cache.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("cache max_bytes must be >= 0, got %d", c.Cache.MaxBytes))
	}
	return errors.Join(errs...)
}

// FailurePolicy returns the parsed policy. Call Validate first.
func (c *Config) FailurePolicy() jarscan.FailurePolicy {
	p, _ := jarscan.ParseFailurePolicy(c.Policy)
	return p
}

// Digester returns the configured digester. Call Validate first.
func (c *Config) Digester() jarscan.Digester {
	d, ok := jarscan.DigesterFor(c.Digest)
	if !ok {
		return jarscan.SHA256Digester
	}
	return d
}

// CacheDir returns the configured cache directory or DefaultCacheDir.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns $XDG_CACHE_HOME/jarscan, or ~/.cache/jarscan.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "jarscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "jarscan"), nil
}
