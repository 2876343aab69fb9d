package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup creates and configures a new logger instance, and points
// internal/engine's package-level zerolog logger at the same level so CLI
// output from both loggers agrees.
func Setup(level string) *slog.Logger {
	var l slog.Level
	var zl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		l, zl = slog.LevelDebug, zerolog.DebugLevel
	case "info":
		l, zl = slog.LevelInfo, zerolog.InfoLevel
	case "warn":
		l, zl = slog.LevelWarn, zerolog.WarnLevel
	case "error":
		l, zl = slog.LevelError, zerolog.ErrorLevel
	default:
		l, zl = slog.LevelInfo, zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(zl)

	opts := &slog.HandlerOptions{
		Level: l,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// Logger creates a default logger with info level.
func Logger() *slog.Logger {
	return Setup("info")
}
