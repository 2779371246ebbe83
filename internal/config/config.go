package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`
	LogLevel     string `yaml:"log_level"`

	Seed  SeedConfig  `yaml:"seed"`
	Cache CacheConfig `yaml:"cache"`
	CORS  CORSConfig  `yaml:"cors"`
}

// SeedConfig controls first-boot data provisioning
type SeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // External dataset; empty means the embedded sample
}

// CacheConfig for the evaluation result cache
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxEntries int64         `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// CORSConfig for the HTTP shell
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8080",
		DatabasePath: "data/homeview.db",
		LogLevel:     "info",
		Seed: SeedConfig{
			Enabled: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
			TTL:        10 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
		},
	}
}

// Load reads configuration from YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Read YAML file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SEED_PATH"); v != "" {
		cfg.Seed.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive when the cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
		}
	}
	return nil
}
