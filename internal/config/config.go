// Package config loads and validates PageDeck configuration from TOML.
//
// The server and CLI share one file format:
//
//	listen = ":8080"
//	data_dir = "~/.pagedeck"
//
//	[store]
//	backend = "file"        # memory | file | mongo
//	uri = "mongodb://localhost:27017"
//	database = "pagedeck"
//
//	[cache]
//	backend = "null"        # null | file | redis
//	dir = ""                # file backend only
//	addr = "localhost:6379" # redis backend only
//	ttl = "24h"
//
// Missing fields fall back to defaults; Load without a path returns the
// default configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pagedeck/pagedeck/pkg/errors"
)

// Store backend names.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Cache backend names.
const (
	CacheNull  = "null"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the application configuration.
type Config struct {
	Listen  string      `toml:"listen"`
	DataDir string      `toml:"data_dir"`
	Store   StoreConfig `toml:"store"`
	Cache   CacheConfig `toml:"cache"`
}

// StoreConfig selects and configures the page store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	Addr    string   `toml:"addr"`
	TTL     duration `toml:"ttl"`
}

// duration wraps time.Duration with TOML text decoding ("24h", "90s").
type duration struct {
	time.Duration
}

// UnmarshalText implements toml text decoding for durations.
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the default configuration: file store under the user
// config directory, caching disabled, listening on :8080.
func Default() Config {
	dataDir := ".pagedeck"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".pagedeck")
	}
	return Config{
		Listen:  ":8080",
		DataDir: dataDir,
		Store: StoreConfig{
			Backend:  StoreFile,
			Database: "pagedeck",
		},
		Cache: CacheConfig{
			Backend: CacheNull,
			TTL:     duration{24 * time.Hour},
		},
	}
}

// Load reads a TOML config file, layering it over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and their required fields.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid store.backend: %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNull, CacheFile:
	case CacheRedis:
		if c.Cache.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache.backend: %q (must be one of: null, file, redis)", c.Cache.Backend)
	}
	return nil
}

// CacheTTL returns the configured artifact cache TTL.
func (c *Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }

// StoreDir returns the directory for the file store backend.
func (c *Config) StoreDir() string { return filepath.Join(c.DataDir, "pages") }

// CacheDir returns the directory for the file cache backend, honoring an
// explicit override.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(c.DataDir, "cache")
}

// String renders the effective configuration for debug logging. Secrets
// (connection URIs may embed credentials) are elided.
func (c *Config) String() string {
	uri := c.Store.URI
	if uri != "" {
		uri = "<set>"
	}
	return fmt.Sprintf("listen=%s store=%s(uri=%s) cache=%s data=%s",
		c.Listen, c.Store.Backend, uri, c.Cache.Backend, c.DataDir)
}
