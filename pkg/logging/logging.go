// Package logging configures structured logging for the daemon.
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: text (colored, default), plain (no colors) or json
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText  = "text"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// Setup installs the default logger for service, configured from LOG_LEVEL and
// LOG_FORMAT. Every record carries the service name.
func Setup(service string) {
	level := LevelFromString(os.Getenv("LOG_LEVEL"))
	format := FormatFromString(os.Getenv("LOG_FORMAT"))
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, format)).With("service", service))
}

// NewHandler builds the handler for format. Debug logging adds source
// locations.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	addSource := level == slog.LevelDebug
	if format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: addSource})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  addSource,
		NoColor:    format == FormatPlain,
	})
}

// LevelFromString maps a level name to a slog level, defaulting to info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// FormatFromString maps a format name to one of the output formats,
// defaulting to FormatText.
func FormatFromString(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatPlain, FormatJSON:
		return f
	default:
		return FormatText
	}
}
