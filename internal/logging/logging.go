// Package logging provides structured logging setup for resa.
package logging

import (
	"io"
	"log/slog"
)

// New returns a logger writing to w.
// Dev mode uses human-readable text at debug level; prod uses JSON at info.
func New(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup installs New(w, devMode) as the default slog logger.
// The CLI passes stderr so stdout stays clean for generated output.
func Setup(w io.Writer, devMode bool) {
	slog.SetDefault(New(w, devMode))
}
