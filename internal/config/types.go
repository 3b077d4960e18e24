// Package config loads shardparse configuration.
//
// Values are layered with koanf, lowest to highest precedence: built-in
// defaults, the shardparse.yaml config file, SHARDPARSE_* environment
// variables, and command-line flags that were explicitly set.
package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
)

// Output modes.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// OutputModes lists the accepted values of the output setting.
var OutputModes = []string{OutputText, OutputJSON, OutputYAML}

// Config holds all configuration options.
type Config struct {
	Feature  string               `koanf:"feature"`
	Dialect  dialect.DatabaseType `koanf:"dialect"`
	RulesDir string               `koanf:"rules_dir"`
	LogLevel string               `koanf:"log_level"`
	Output   string               `koanf:"output"`
	Verbose  bool                 `koanf:"verbose"`
	NoColor  bool                 `koanf:"no_color"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Feature == "" {
		return fmt.Errorf("feature is required")
	}
	if !c.Dialect.IsValid() {
		return fmt.Errorf("dialect is required, one of %v", dialect.All())
	}
	if !slices.Contains(OutputModes, c.Output) {
		return fmt.Errorf("unknown output mode %q, expected one of %v", c.Output, OutputModes)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level for the configuration. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
