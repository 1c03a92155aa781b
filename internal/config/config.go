// Package config loads the tagweave CLI configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/grahms/tagweave"
)

// Config holds the CLI defaults. Flags override every field.
type Config struct {
	// Output format: text, json or yaml
	Format string `yaml:"format"`

	// Duplicate attribute handling: reject or last-wins
	Duplicates string `yaml:"duplicates"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:     "text",
		Duplicates: tagweave.DuplicateReject.String(),
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults; a
// named file must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q: want text, json or yaml", c.Format)
	}
	if _, err := c.DuplicatePolicy(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// DuplicatePolicy converts the configured duplicate handling.
func (c *Config) DuplicatePolicy() (tagweave.DuplicatePolicy, error) {
	return tagweave.ParseDuplicatePolicy(c.Duplicates)
}

// Logger builds a zap logger writing to stderr.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Engine builds a tagweave engine from the configuration.
func (c *Config) Engine(logger *zap.Logger) (*tagweave.Engine, error) {
	policy, err := c.DuplicatePolicy()
	if err != nil {
		return nil, err
	}
	return tagweave.NewEngine(tagweave.WithLogger(logger), tagweave.WithDuplicatePolicy(policy)), nil
}
