// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns rotation defaults. Paths come from the config.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Console:    true,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

var levelLabels = map[string]string{
	"debug": "\033[36mDBG\033[0m",
	"info":  "\033[32mINF\033[0m",
	"warn":  "\033[33mWRN\033[0m",
	"error": "\033[31mERR\033[0m",
}

// NewLoggerWithConfig builds the process logger. Console output goes to
// stderr so that report output on stdout stays clean; the file is rotated by
// size.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.TimeOnly,
			FormatLevel: func(i interface{}) string {
				if label, ok := levelLabels[fmt.Sprint(i)]; ok {
					return label
				}
				return fmt.Sprint(i)
			},
		})
	}

	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	if len(writers) == 0 {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

type contextKey struct{}

// loggerKey carries a request-scoped logger.
var loggerKey = contextKey{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or fallback when none is set.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return fallback
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogSkip logs a symbol level that produced no trade.
func LogSkip(logger zerolog.Logger, symbol string, level int, reason string) {
	logger.Debug().
		Str("event", "level_skipped").
		Str("symbol", symbol).
		Int("level", level).
		Str("reason", reason).
		Msg("Level skipped")
}

// LogLoad logs the outcome of one load-classify-aggregate pass.
func LogLoad(logger zerolog.Logger, path string, symbols, trades, rejected int, duration time.Duration) {
	logger.Debug().
		Str("event", "load").
		Str("path", path).
		Int("symbols", symbols).
		Int("trades", trades).
		Int("rejected", rejected).
		Dur("duration", duration).
		Msg("Signals loaded")
}

// LogVisit logs a visit write. Failures are warnings: the report is still
// served.
func LogVisit(logger zerolog.Logger, page, source string, err error) {
	if err != nil {
		logger.Warn().Err(err).
			Str("event", "visit").
			Str("page", page).
			Str("source", source).
			Msg("Visit not recorded")
		return
	}
	logger.Debug().
		Str("event", "visit").
		Str("page", page).
		Str("source", source).
		Msg("Visit recorded")
}
