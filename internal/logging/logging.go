// Package logging builds the zerolog loggers used across the pipeline.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the log level and the sinks. The file sink rotates via
// lumberjack; the console sink is human-readable.
type Config struct {
	Level      string
	Console    bool
	File       string // rotating log file path; empty disables the file sink
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig logs info and above to the console and to a rotating file
// under the user's config directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Level:      "info",
		Console:    true,
		File:       filepath.Join(home, ".config", "swing-trader", "logs", "swing-trader.log"),
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 30,
	}
}

// NewLogger builds a logger from the default configuration.
func NewLogger() zerolog.Logger {
	return New(DefaultConfig())
}

// New builds a logger writing to every sink the configuration enables,
// falling back to stdout when none is usable.
func New(cfg Config) zerolog.Logger {
	var sinks []io.Writer

	if cfg.Console {
		sinks = append(sinks, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File != "" {
		// A failed mkdir silently drops the file sink; the console one remains.
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			sinks = append(sinks, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
		}
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer
	switch len(sinks) {
	case 0:
		out = os.Stdout
	case 1:
		out = sinks[0]
	default:
		out = zerolog.MultiLevelWriter(sinks...)
	}

	return zerolog.New(out).With().Timestamp().Caller().Logger()
}

// SetDebugLevel drops the global level to debug, for --verbose.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithSymbol tags every event from the returned logger with the symbol.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// LogRecommendation records an entry recommendation emitted by the analyzer.
func LogRecommendation(logger zerolog.Logger, symbol, entryType string, price, confidence float64) {
	logger.Info().
		Str("event", "recommendation").
		Str("symbol", symbol).
		Str("type", entryType).
		Float64("price", price).
		Float64("confidence", confidence).
		Msg("Entry recommendation")
}

// LogDecision records a decision-engine outcome.
func LogDecision(logger zerolog.Logger, symbol string, approved bool, stage, reason string) {
	event := logger.Info().
		Str("event", "decision").
		Str("symbol", symbol).
		Bool("approved", approved).
		Str("stage", stage)

	if approved {
		event.Msg("Trade approved")
	} else {
		event.Str("reason", reason).Msg("Trade rejected")
	}
}

// LogSizing records a position-sizing result.
func LogSizing(logger zerolog.Logger, symbol string, quantity int64, riskAmount, capitalRequired float64) {
	logger.Debug().
		Str("event", "sizing").
		Str("symbol", symbol).
		Int64("quantity", quantity).
		Float64("risk_amount", riskAmount).
		Float64("capital_required", capitalRequired).
		Msg("Position sized")
}
