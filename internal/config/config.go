// Package config loads the resumehashd configuration.
//
// The configuration comes from one YAML file named by --config. Command-line
// flags that were set explicitly override the file. Unknown keys are
// rejected so that a typo cannot silently fall back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/internal/logging"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
	"xdao.co/resumehash/storage/localfs"
	"xdao.co/resumehash/storage/memory"
)

// Store backends.
const (
	BackendNone    = "none"
	BackendMemory  = "memory"
	BackendLocalFS = "localfs"
)

// Config is the daemon configuration.
type Config struct {
	// Listen is the gRPC listen address.
	Listen string `yaml:"listen"`

	// MetricsListen is the HTTP address serving /metrics, /healthz and the
	// JSON API. Empty disables the HTTP listener.
	MetricsListen string `yaml:"metrics_listen"`

	// Algorithm names the fingerprint digest (sha256, sha3-256, blake3).
	Algorithm string `yaml:"algorithm"`

	// MaxMsgBytes bounds gRPC messages in both directions.
	MaxMsgBytes int `yaml:"max_msg_bytes"`

	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects the registry store.
type StoreConfig struct {
	// Backend is none, memory or localfs.
	Backend string `yaml:"backend"`

	// Dir is the localfs root.
	Dir string `yaml:"dir"`

	// CacheObjects puts an in-memory cache of that many records in front of
	// a localfs store. Zero disables the cache.
	CacheObjects int `yaml:"cache_objects"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	Format     string `yaml:"format"`
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:        "127.0.0.1:7878",
		MetricsListen: "127.0.0.1:9878",
		Algorithm:     digest.SHA256.String(),
		MaxMsgBytes:   4 << 20,
		Store:         StoreConfig{Backend: BackendNone},
		Log:           LogConfig{Format: "json", Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("config: listen: %w", err)
	}
	if c.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(c.MetricsListen); err != nil {
			return fmt.Errorf("config: metrics_listen: %w", err)
		}
	}
	alg, err := digest.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if rhash.ConstantTime && alg != digest.SHA256 {
		return fmt.Errorf("config: constant-time builds only support sha256, not %s", alg)
	}
	if c.MaxMsgBytes < 0 {
		return fmt.Errorf("config: invalid max_msg_bytes %d", c.MaxMsgBytes)
	}
	switch c.Store.Backend {
	case "", BackendNone, BackendMemory:
	case BackendLocalFS:
		if c.Store.Dir == "" {
			return errors.New("config: store.dir is required for the localfs backend")
		}
	default:
		return fmt.Errorf("config: invalid store.backend %q", c.Store.Backend)
	}
	if c.Store.CacheObjects < 0 {
		return fmt.Errorf("config: invalid store.cache_objects %d", c.Store.CacheObjects)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: invalid log.format %q", c.Log.Format)
	}
	return nil
}

// Fingerprinter returns the fingerprinter for the configured algorithm.
func (c Config) Fingerprinter() (rhash.Fingerprinter, error) {
	alg, err := digest.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return rhash.Fingerprinter{}, fmt.Errorf("config: %w", err)
	}
	return rhash.Fingerprinter{Algorithm: alg}, nil
}

// OpenStore opens the configured registry store. It returns a nil CAS for
// the none backend.
func (c Config) OpenStore() (storage.CAS, error) {
	f, err := c.Fingerprinter()
	if err != nil {
		return nil, err
	}
	switch c.Store.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return memory.New(memory.WithAlgorithm(f.Algorithm)), nil
	case BackendLocalFS:
		durable, err := localfs.New(c.Store.Dir, localfs.WithAlgorithm(f.Algorithm))
		if err != nil {
			return nil, err
		}
		if c.Store.CacheObjects == 0 {
			return durable, nil
		}
		cache := memory.New(memory.WithAlgorithm(f.Algorithm), memory.WithCapacity(c.Store.CacheObjects))
		return storage.Tiered{Cache: cache, Durable: durable}, nil
	default:
		return nil, fmt.Errorf("config: invalid store.backend %q", c.Store.Backend)
	}
}

// LoggingOptions maps the log section to logging.Options.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{
		Format:     c.Log.Format,
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
