// Package logging builds the categorized zap loggers used across rollcall.
// Each component logs under its own category name; categories can be turned
// off individually in the logging config.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rollcall/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config, wiring
	CategorySource    Category = "source"    // Record fetches
	CategorySelection Category = "selection" // Selection state changes
	CategoryBridge    Category = "bridge"    // Host signals
	CategoryUI        Category = "ui"        // Terminal picker
)

// Logger hands out per-category zap loggers sharing one core.
type Logger struct {
	base *zap.Logger
	cfg  config.LoggingConfig
}

// New builds a logger from cfg. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	zc := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Format {
	case "", "json":
	case "console", "text":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: json, console)", cfg.Format)
	}

	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	base, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{base: base, cfg: cfg}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// For returns the logger for a category, or a no-op logger when the
// category is disabled.
func (l *Logger) For(category Category) *zap.Logger {
	if !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return l.base.Named(string(category))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
