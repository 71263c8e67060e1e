// Package config defines all configuration structures for nInChI.  No I/O or
// parsing logic lives in this file. It holds only plain data types and validation.
package config

import (
	"fmt"

	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stderr" | "stdout" | file path
}

// LoggerConfig converts the section into the logging package's LogConfig.
func (l LogConfig) LoggerConfig() (logging.LogConfig, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return logging.LogConfig{}, err
	}
	out := l.Output
	if out == "" {
		out = DefaultLogOutput
	}
	return logging.LogConfig{
		Level:            level,
		Format:           l.Format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	}, nil
}

// CanonicalizationConfig tunes the canonical ordering engine.
type CanonicalizationConfig struct {
	// MaxIterationFactor bounds the outer loop at factor·n iterations.
	MaxIterationFactor int `mapstructure:"max_iteration_factor"`

	// WeightedConnectivityIndex weights each neighbor's atomic number by its
	// 1-based column when computing the connectivity index.
	WeightedConnectivityIndex bool `mapstructure:"weighted_connectivity_index"`
}

// BatchConfig holds batch identification parameters.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Namespace    string `mapstructure:"namespace"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// OutputConfig controls how command results are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "text" | "json" | "yaml"
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log              LogConfig              `mapstructure:"log"`
	Canonicalization CanonicalizationConfig `mapstructure:"canonicalization"`
	Batch            BatchConfig            `mapstructure:"batch"`
	Metrics          MetricsConfig          `mapstructure:"metrics"`
	Output           OutputConfig           `mapstructure:"output"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Canonicalization.MaxIterationFactor < 1 {
		return fmt.Errorf("config: canonicalization.max_iteration_factor must be ≥ 1, got %d",
			c.Canonicalization.MaxIterationFactor)
	}

	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}

	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		return fmt.Errorf("config: metrics.textfile_path is required when metrics are enabled")
	}

	if !ValidOutputFormat(c.Output.Format) {
		return fmt.Errorf("config: output.format %q is invalid; expected text|json|yaml", c.Output.Format)
	}

	return nil
}

// ValidOutputFormat reports whether f names a supported result encoding.
func ValidOutputFormat(f string) bool {
	switch f {
	case "text", "json", "yaml":
		return true
	}
	return false
}
