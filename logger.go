package main

import (
	"io"
	"log/slog"
)

// NewLogger returns a JSON slog.Logger writing to w. Debug level adds the
// source location to each record.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug})
	return slog.New(h)
}
