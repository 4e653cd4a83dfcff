package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. SKILLSWAP_LOG_FORMAT=json switches to the
// JSON handler for log shippers; the default text handler reads better in a
// terminal.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("SKILLSWAP_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if os.Getenv("SKILLSWAP_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
