// Package logging configures the process-wide slog default used across
// the split server. Output is colored tint when writing to a terminal.
//
// The level comes from the LOG_LEVEL environment variable: debug, info,
// warn, error (default: info).
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default logger at the level from LOG_LEVEL.
func Setup() {
	SetupWithLevel(levelFromEnv())
}

// SetupWithLevel configures the default logger at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
