package config

import (
	"fmt"
	"strings"

	"keygrid/internal/logging"

	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`                     // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`                   // console, json
	File       string          `yaml:"file,omitempty" json:"file,omitempty"`             // defaults to stderr
	Categories map[string]bool `yaml:"categories,omitempty" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Validate checks level and format.
func (c *LoggingConfig) Validate() error {
	if c.Level != "" {
		if _, err := zapcore.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch strings.ToLower(c.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Format)
	}
	return nil
}

// Options converts the config for logging.Initialize.
func (c *LoggingConfig) Options(verbose bool) logging.Options {
	return logging.Options{
		Level:           c.Level,
		Format:          c.Format,
		Verbose:         verbose,
		CategoryEnabled: c.IsCategoryEnabled,
		OutputPath:      c.File,
	}
}
