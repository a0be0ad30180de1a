// Package logger builds the application's slog.Logger from configuration.
package logger

import (
	"io"
	"log/slog"

	"github.com/sakif/dailylog/internal/config"
)

// New returns a structured logger writing to w.
//
// Log levels (from least to most severe): Debug → Info → Warn → Error.
// Format "json" is meant for production log shipping; "text" is easier to
// read in a terminal.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", "dailylog"))
}

func parseLevel(s string) slog.Level {
	switch s {
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
