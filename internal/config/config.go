package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// TelemetryConfig controls the JSONL audit stream.
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // relative paths resolve against the project root
}

// Config holds all runtime configuration for an openspec invocation.
// Values are populated from .openspec.yaml, OPENSPEC_* env vars, and CLI flags.
type Config struct {
	Lang          string          `mapstructure:"lang"`
	Dir           string          `mapstructure:"dir"`
	Strict        bool            `mapstructure:"strict"`
	NoColor       bool            `mapstructure:"no_color"`
	NoInteractive bool            `mapstructure:"no_interactive"`
	Verbose       bool            `mapstructure:"verbose"`
	Tools         []string        `mapstructure:"tools"`
	CodexHome     string          `mapstructure:"codex_home"`
	Telemetry     TelemetryConfig `mapstructure:"telemetry"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("lang", "")
	viper.SetDefault("dir", "openspec")
	viper.SetDefault("strict", false)
	viper.SetDefault("no_color", false)
	viper.SetDefault("no_interactive", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("tools", []string{})
	viper.SetDefault("codex_home", "")
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.path", "openspec/.audit.jsonl")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Dir == "" {
		cfg.Dir = "openspec"
	}
	return cfg, nil
}
