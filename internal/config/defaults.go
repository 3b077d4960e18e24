package config

import "github.com/leapstack-labs/shardparse/pkg/dialect"

// Default configuration values.
const (
	DefaultFeature  = "sharding"
	DefaultDialect  = "mysql"
	DefaultLogLevel = "info"
	DefaultOutput   = OutputText
)

// Defaults returns the default values keyed like the config file.
func Defaults() map[string]any {
	return map[string]any{
		"feature":   DefaultFeature,
		"dialect":   DefaultDialect,
		"rules_dir": "",
		"log_level": DefaultLogLevel,
		"output":    DefaultOutput,
		"verbose":   false,
		"no_color":  false,
	}
}

// Default returns a Config holding the default values.
func Default() *Config {
	return &Config{
		Feature:  DefaultFeature,
		Dialect:  dialect.MySQL,
		LogLevel: DefaultLogLevel,
		Output:   DefaultOutput,
	}
}
