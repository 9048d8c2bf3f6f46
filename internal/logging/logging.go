// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
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

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "alphaquant", "logs", "console.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

// FileOnly returns a config that writes only to the rotating log file.
// The interactive console owns the terminal, so nothing may log to it.
func FileOnly(cfg LogConfig) LogConfig {
	cfg.Console = false
	return cfg
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithResource adds a polled resource kind to the logger context.
func WithResource(logger zerolog.Logger, resource string) zerolog.Logger {
	return logger.With().Str("resource", resource).Logger()
}

// LogPollCycle logs the completion of one fetch task.
func LogPollCycle(logger zerolog.Logger, resource string, generation uint64, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "poll").
		Str("resource", resource).
		Uint64("generation", generation).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("Poll cycle failed")
	} else {
		event.Msg("Poll cycle completed")
	}
}

// LogStaleDiscard logs a fetch result discarded because its generation
// no longer matches.
func LogStaleDiscard(logger zerolog.Logger, resource string, taskGen, currentGen uint64) {
	logger.Debug().
		Str("event", "stale_discard").
		Str("resource", resource).
		Uint64("task_generation", taskGen).
		Uint64("current_generation", currentGen).
		Msg("Discarded stale fetch result")
}

// LogOrderOutcome logs the settled outcome of an order submission.
func LogOrderOutcome(logger zerolog.Logger, symbol string, side string, qty float64, kind string, reason string) {
	logger.Info().
		Str("event", "order_outcome").
		Str("symbol", symbol).
		Str("side", side).
		Float64("quantity", qty).
		Str("outcome", kind).
		Str("reason", reason).
		Msg("Order submission settled")
}

// LogAlgoEvent logs an algo control transition.
func LogAlgoEvent(logger zerolog.Logger, action string, symbol string, running bool) {
	logger.Info().
		Str("event", "algo").
		Str("action", action).
		Str("symbol", symbol).
		Bool("running", running).
		Msg("Algo state update")
}

// LogAPICall logs an API call.
func LogAPICall(logger zerolog.Logger, method, endpoint string, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "api_call").
		Str("method", method).
		Str("endpoint", endpoint).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("API call failed")
	} else {
		event.Msg("API call completed")
	}
}
