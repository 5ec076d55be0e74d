// Package config loads adsaver settings: a YAML file under .adsaver/,
// overlaid with ADSAVER_* environment variables. Command-line flags are
// applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/corey/adsaver/internal/domain/combo"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the project's .adsaver directory.
const FileName = "config.yaml"

// Config holds all adsaver configuration.
type Config struct {
	// Generation defaults used when a command or request doesn't override them
	Defaults DefaultsConfig `yaml:"defaults" envPrefix:"DEFAULTS_"`

	// Daemon HTTP server
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Logging
	Log LogConfig `yaml:"log" envPrefix:"LOG_"`

	// Input size guard rails
	Limits LimitsConfig `yaml:"limits" envPrefix:"LIMITS_"`
}

// DefaultsConfig holds generation defaults.
type DefaultsConfig struct {
	Mode       string        `yaml:"mode" env:"MODE"`
	MatchTypes []string      `yaml:"match_types" env:"MATCH_TYPES" envSeparator:","`
	Sort       string        `yaml:"sort" env:"SORT"`
	Options    OptionsConfig `yaml:"options" envPrefix:"OPT_"`
}

// OptionsConfig mirrors combo.Options with config-file tags.
type OptionsConfig struct {
	NoShuffle       bool `yaml:"no_shuffle" env:"NO_SHUFFLE"`
	UseComma        bool `yaml:"use_comma" env:"USE_COMMA"`
	AllowDuplicates bool `yaml:"allow_duplicates" env:"ALLOW_DUPLICATES"`
	NoSpaceBetween  bool `yaml:"no_space_between" env:"NO_SPACE_BETWEEN"`
	OnlyNoSpace     bool `yaml:"only_no_space" env:"ONLY_NO_SPACE"`
}

// ServerConfig configures the daemon's HTTP UI/API.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"` // bind host (default 127.0.0.1)
	HTTPPort int    `yaml:"http_port" env:"HTTP_PORT"` // 0 = derived from project root
}

// LogConfig configures zap.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"` // debug, info, warn, error
}

// LimitsConfig holds thresholds that trigger warnings, never hard caps.
type LimitsConfig struct {
	WarnCombinations int `yaml:"warn_combinations" env:"WARN_COMBINATIONS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode:       combo.ModePairs.String(),
			MatchTypes: []string{combo.Broad.String()},
			Sort:       combo.SortInput.String(),
		},
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1",
		},
		Log: LogConfig{
			Level: "info",
		},
		Limits: LimitsConfig{
			WarnCombinations: 100000,
		},
	}
}

// Load reads path over the defaults, then applies ADSAVER_* environment
// variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays ADSAVER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ADSAVER_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes cfg as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if _, err := combo.ParseMode(c.Defaults.Mode); err != nil {
		return fmt.Errorf("defaults.mode: %w", err)
	}
	if _, err := combo.ParseMatchTypes(c.Defaults.MatchTypes); err != nil {
		return fmt.Errorf("defaults.match_types: %w", err)
	}
	if _, err := combo.ParseSortKey(c.Defaults.Sort); err != nil {
		return fmt.Errorf("defaults.sort: %w", err)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port: out of range: %d", c.Server.HTTPPort)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	if c.Limits.WarnCombinations < 0 {
		return fmt.Errorf("limits.warn_combinations: must not be negative")
	}
	return nil
}

// EngineConfig converts the defaults into a generation config. Call
// Validate first; invalid names fall back to the combo defaults.
func (c *Config) EngineConfig() combo.Config {
	out := combo.DefaultConfig()
	if m, err := combo.ParseMode(c.Defaults.Mode); err == nil {
		out.Mode = m
	}
	if mt, err := combo.ParseMatchTypes(c.Defaults.MatchTypes); err == nil {
		out.MatchTypes = mt
	}
	o := c.Defaults.Options
	out.Options = combo.Options{
		NoShuffle:       o.NoShuffle,
		UseComma:        o.UseComma,
		AllowDuplicates: o.AllowDuplicates,
		NoSpaceBetween:  o.NoSpaceBetween,
		OnlyNoSpace:     o.OnlyNoSpace,
	}
	return out
}

// SortKey returns the default presentation order.
func (c *Config) SortKey() combo.SortKey {
	k, err := combo.ParseSortKey(c.Defaults.Sort)
	if err != nil {
		return combo.SortInput
	}
	return k
}
