// Package logging provides structured logging utilities.
//
// Records are rendered Maven-style for terminals:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value
package logging

import (
	"log/slog"
	"os"

	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(NewTerminalHandler(os.Stdout, level))
}

// NewLoggerWithSystem creates a logger with a system prefix (e.g.
// "worker", "allegro", "firefly") so scoped loggers can be handed to
// sub-components.
func NewLoggerWithSystem(cfg config.LoggingConfig, system string) *slog.Logger {
	return NewLogger(cfg).With("system", system)
}
