package core

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a text or json slog logger at the given level. Unknown
// levels fall back to info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetupLogging installs the configured logger as the slog default.
func (config *ServiceConfig) SetupLogging(w io.Writer) *slog.Logger {
	logger := NewLogger(w, config.LogLevel, config.LogFormat)
	slog.SetDefault(logger)
	return logger
}
