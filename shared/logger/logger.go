package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

func init() {
	// Auto-initialize with safe defaults for tests and development
	// Production code can override by calling Initialize() explicitly
	Initialize("info", false)
}

// Initialize sets up the global logger with the specified level and format
func Initialize(level string, useJSON bool) {
	InitializeWriter(os.Stdout, level, useJSON)
}

// InitializeWriter is Initialize with a custom destination.
func InitializeWriter(w io.Writer, level string, useJSON bool) {
	lvl := parseLevel(level)
	// source positions at debug level only
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// parseLevel converts string log level to slog.Level
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
