// Package config loads warren's open-time configuration. Spec §6
// recognizes exactly one required option, Path; everything else here is
// additive ambient configuration (engine retry tuning, log level) with
// documented defaults, grounded on the teacher's BurntSushi/toml-based
// config loading (internal/config/local_config.go in steveyegge-beads).
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// EngineConfig tunes the KV engine adapter (kvengine.Options).
type EngineConfig struct {
	LockTimeoutMS     int `toml:"lock_timeout_ms"`
	RetryMaxElapsedMS int `toml:"retry_max_elapsed_ms"`
}

// LockTimeout returns the configured lock timeout as a duration.
func (e EngineConfig) LockTimeout() time.Duration {
	return time.Duration(e.LockTimeoutMS) * time.Millisecond
}

// RetryMaxElapsed returns the configured retry budget as a duration.
func (e EngineConfig) RetryMaxElapsed() time.Duration {
	return time.Duration(e.RetryMaxElapsedMS) * time.Millisecond
}

// LoggingConfig controls the structured logger's verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config is warren's full open-time configuration: the single
// spec-mandated Path option, plus the additive ambient tables.
type Config struct {
	Path    string        `toml:"path"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

// defaultEngineConfig mirrors kvengine.DefaultOptions so Config and the
// engine adapter agree even when a caller omits the [engine] table.
func defaultEngineConfig() EngineConfig {
	return EngineConfig{LockTimeoutMS: 2000, RetryMaxElapsedMS: 5000}
}

// WithDefaults fills in any zero-valued ambient fields, leaving Path
// untouched (Path has no sensible default; Open validates it).
func (c Config) WithDefaults() Config {
	if c.Engine.LockTimeoutMS <= 0 {
		c.Engine.LockTimeoutMS = defaultEngineConfig().LockTimeoutMS
	}
	if c.Engine.RetryMaxElapsedMS <= 0 {
		c.Engine.RetryMaxElapsedMS = defaultEngineConfig().RetryMaxElapsedMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return c
}

// Load reads a TOML configuration file from path, applying defaults to
// any field left unset.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Path == "" {
		return Config{}, fmt.Errorf("config: %s: missing required 'path'", path)
	}
	return cfg.WithDefaults(), nil
}
