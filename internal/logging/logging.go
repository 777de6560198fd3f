// Package logging builds the zap logger threaded through DB, Store, the
// integrity planner, and the deletion executor. Structured logging is
// carried as an ambient concern regardless of spec.md's feature-level
// Non-goals (see SPEC_FULL.md §8).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap logger at the given level
// ("debug", "info", "warn", "error"). An empty level defaults to "info".
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}

// Nop returns a logger that discards everything. Open and
// OpenWithConfig do not use it: they always build their logger with New.
func Nop() *zap.Logger {
	return zap.NewNop()
}
