// Package config loads library-wide defaults from RWFLOW_* environment
// variables and turns them into component configurations.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vnykmshr/rwflow/pkg/common/logging"
	"github.com/vnykmshr/rwflow/pkg/common/validation"
	"github.com/vnykmshr/rwflow/pkg/metrics"
	"github.com/vnykmshr/rwflow/pkg/transform/buffered"
	"github.com/vnykmshr/rwflow/pkg/transform/compress"
)

// Prefix is prepended to every environment variable name.
const Prefix = "RWFLOW"

// Config holds all library-wide configuration. Every field is read from
// RWFLOW_ followed by its envconfig key.
type Config struct {
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEV" default:"false"`

	BufferSize int `envconfig:"BUFFER_SIZE" default:"4096"`

	Compression string `envconfig:"COMPRESSION_LEVEL" default:"default"`

	MetricsEnabled   bool   `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"rwflow"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		LogDevelopment:   false,
		BufferSize:       buffered.DefaultSize,
		Compression:      "default",
		MetricsEnabled:   true,
		MetricsNamespace: metrics.DefaultNamespace,
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validation.ValidateOneOf("config", "log_level", c.LogLevel,
		"debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := validation.ValidatePositive("config", "buffer_size", c.BufferSize); err != nil {
		return err
	}
	if _, err := compress.ParseLevel(c.Compression); err != nil {
		return err
	}
	if c.MetricsEnabled {
		return validation.ValidateNotEmpty("config", "metrics_namespace", c.MetricsNamespace)
	}
	return nil
}

// Logger builds a zap logger from the logging section.
func (c *Config) Logger() (*zap.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.LogDevelopment
	return logging.New(cfg)
}

// BufferedConfig returns a buffered stage configuration of BufferSize bytes.
func (c *Config) BufferedConfig() buffered.Config {
	return buffered.Config{ReadSize: c.BufferSize, WriteSize: c.BufferSize}
}

// CompressionLevel returns the parsed compression level.
func (c *Config) CompressionLevel() (compress.Level, error) {
	return compress.ParseLevel(c.Compression)
}

// MetricsRegistry registers rwflow metrics on reg according to the metrics
// section. It returns nil when metrics are disabled.
func (c *Config) MetricsRegistry(reg prometheus.Registerer) *metrics.Registry {
	return metrics.NewRegistryWithConfig(metrics.Config{
		Enabled:   c.MetricsEnabled,
		Registry:  reg,
		Namespace: c.MetricsNamespace,
	})
}
