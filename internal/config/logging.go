package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel accepts debug, info, warn/warning and error (case-insensitive).
// Anything else maps to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewLogger builds a tint-backed slog logger writing to w.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ParseLogLevel(level),
		TimeFormat: time.RFC3339,
	}))
}

// InitLogger installs the process-wide default logger.
func InitLogger(cfg *Config) {
	slog.SetDefault(NewLogger(os.Stderr, cfg.Server.LogLevel))
	slog.Info("Logger initialized", "level", ParseLogLevel(cfg.Server.LogLevel).String())
}
