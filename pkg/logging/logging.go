// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logger := logging.Setup("debug")        // level from config
//	logging.SetupWithLevel(slog.LevelWarn)  // explicit level override
//
// An empty level falls back to the LOG_LEVEL environment variable
// (debug, info, warn, error; default info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint logger at the named level as the slog default and returns it.
func Setup(level string) *slog.Logger {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return SetupWithLevel(ParseLevel(level))
}

// SetupWithLevel installs a tint logger at the given level as the slog default and returns it.
func SetupWithLevel(level slog.Level) *slog.Logger {
	logger := New(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level == slog.LevelDebug,
		}),
	)
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
