// Package logging configures the structured debug log.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file written inside the settings directory.
const FileName = "debug.log"

// Setup creates a JSON logger that writes to dir/debug.log.
// It returns the logger, a cleanup function to close the log file, and any error.
// The log file is truncated on each run so it reflects only the current one.
func Setup(dir string, level slog.Level) (*slog.Logger, func() error, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("log directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(dir, FileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), f.Close, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is debug.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Discard returns a logger that drops everything, for runs where the log
// file cannot be opened.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
