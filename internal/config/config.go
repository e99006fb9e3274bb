// Package config loads agq settings from an optional YAML file and the
// environment. Environment variables override the file; command-line flags
// override both and are applied by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/agraph/internal/ir"
)

// Defaults.
const (
	DefaultServer  = "http://localhost:10035"
	DefaultState   = "agq.db"
	DefaultTimeout = 30 * time.Second
	DefaultSession = "default"
)

// Config holds connection and state settings.
type Config struct {
	Server     string        `yaml:"server"`
	Catalog    string        `yaml:"catalog"`
	Repository string        `yaml:"repository"`
	User       string        `yaml:"user"`
	Password   string        `yaml:"password"`
	StatePath  string        `yaml:"state"`
	Timeout    time.Duration `yaml:"timeout"`
	Debug      bool          `yaml:"debug"`

	// Namespaces are declared for every query and generator.
	Namespaces ir.Namespaces `yaml:"namespaces"`
}

// Load reads the file at path (skipped when path is empty), then applies
// AGQ_* environment variables and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultState
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Namespaces == nil {
		cfg.Namespaces = ir.Namespaces{}
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server, "AGQ_SERVER")
	setString(&cfg.Catalog, "AGQ_CATALOG")
	setString(&cfg.Repository, "AGQ_REPOSITORY")
	setString(&cfg.User, "AGQ_USER")
	setString(&cfg.Password, "AGQ_PASSWORD")
	setString(&cfg.StatePath, "AGQ_STATE")

	if v := os.Getenv("AGQ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AGQ_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv("AGQ_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AGQ_DEBUG: %w", err)
		}
		cfg.Debug = debug
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the settings needed to reach a repository.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Repository == "" {
		return fmt.Errorf("repository is required (set AGQ_REPOSITORY or --repository)")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
