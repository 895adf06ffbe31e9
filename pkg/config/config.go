// Package config loads the CLI configuration: built-in defaults first, then
// an optional YAML file, then PAGERANK_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Built-in defaults, applied before any file or environment override.
const (
	DefaultDamping    = 0.9
	DefaultEpsilon    = 1e-7
	DefaultMaxIter    = 100
	DefaultWorkers    = 3
	DefaultTopK       = 3
	DefaultBufferSize = 4096
	DefaultInListCap  = 300
)

// Config holds all configuration for the application.
type Config struct {
	Rank    RankConfig    `mapstructure:"rank"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	History HistoryConfig `mapstructure:"history"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// RankConfig holds the defaults of the rank computation.
type RankConfig struct {
	Damping float64 `mapstructure:"damping"`
	Epsilon float64 `mapstructure:"epsilon"`
	MaxIter int     `mapstructure:"max_iter"`
	Workers int     `mapstructure:"workers"`
	TopK    int     `mapstructure:"top_k"`
}

// IngestConfig holds graph ingestion tuning knobs.
type IngestConfig struct {
	// BufferSize is the pipeline ring capacity in ints.
	BufferSize int `mapstructure:"buffer_size"`
	// InListCap is the initial capacity of a node's in-list.
	InListCap int `mapstructure:"inlist_cap"`
}

// HistoryConfig holds the run-history database configuration.
type HistoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // sqlite, mysql or postgres
	Path     string `mapstructure:"path"` // sqlite database file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds remote graph source configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// newViper builds a viper instance carrying the defaults and the
// environment layer shared by every load path.
func newViper() *viper.Viper {
	v := viper.New()

	for key, value := range map[string]any{
		"rank.damping":       DefaultDamping,
		"rank.epsilon":       DefaultEpsilon,
		"rank.max_iter":      DefaultMaxIter,
		"rank.workers":       DefaultWorkers,
		"rank.top_k":         DefaultTopK,
		"ingest.buffer_size": DefaultBufferSize,
		"ingest.inlist_cap":  DefaultInListCap,
		"history.enabled":    false,
		"history.type":       "sqlite",
		"history.path":       "./pagerank.db",
		"history.max_conns":  4,
		"storage.type":       "local",
		"storage.local_path": ".",
		"log.level":          "info",
	} {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("PAGERANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// unmarshal decodes and validates the merged configuration.
func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration, optionally from an explicit file path. Without a
// path the standard locations are searched and a missing file just means
// defaults apply; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/pagerank-analysis")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return unmarshal(v)
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := c.Rank.validate(); err != nil {
		return err
	}
	if c.Ingest.BufferSize < 2 || c.Ingest.BufferSize%2 != 0 {
		return fmt.Errorf("buffer size must be a positive even number, got %d", c.Ingest.BufferSize)
	}
	if c.Ingest.InListCap < 1 {
		return fmt.Errorf("in-list capacity must be positive, got %d", c.Ingest.InListCap)
	}
	if c.History.Enabled {
		if err := c.History.validate(); err != nil {
			return err
		}
	}
	return c.Storage.validate()
}

func (r *RankConfig) validate() error {
	switch {
	case r.Damping <= 0 || r.Damping >= 1:
		return fmt.Errorf("damping factor must be in (0,1), got %g", r.Damping)
	case r.Epsilon <= 0:
		return fmt.Errorf("epsilon must be positive, got %g", r.Epsilon)
	case r.MaxIter < 1:
		return fmt.Errorf("max iterations must be positive, got %d", r.MaxIter)
	case r.Workers < 1:
		return fmt.Errorf("worker count must be positive, got %d", r.Workers)
	case r.TopK < 1:
		return fmt.Errorf("top-k must be positive, got %d", r.TopK)
	}
	return nil
}

func (h *HistoryConfig) validate() error {
	switch h.Type {
	case "sqlite":
		if h.Path == "" {
			return fmt.Errorf("sqlite history requires a database path")
		}
	case "mysql", "postgres", "postgresql":
		if h.Host == "" {
			return fmt.Errorf("history database host is required")
		}
		if h.Database == "" {
			return fmt.Errorf("history database name is required")
		}
	default:
		return fmt.Errorf("unsupported history database type: %s", h.Type)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Type {
	case "", "local":
		return nil
	case "cos":
		if s.Bucket == "" || s.Region == "" {
			return fmt.Errorf("COS storage requires bucket and region")
		}
		if s.SecretID == "" || s.SecretKey == "" {
			return fmt.Errorf("COS storage requires credentials")
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}
