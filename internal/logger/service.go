package logger

import (
	"io"
	"log/slog"
	"os"
)

// Initialize installs the process-wide slog logger. format is "text" or "json".
func Initialize(level slog.Level, format string) {
	InitializeTo(os.Stderr, level, format)
}

// InitializeTo is Initialize with an explicit destination.
func InitializeTo(w io.Writer, level slog.Level, format string) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Named returns the default logger tagged with a component name.
func Named(name string) *slog.Logger {
	return slog.Default().With("name", name)
}
