package segfile

import "log/slog"

// Package logger for file operations
var log = slog.Default()

// SetLogger configures the package logger
func SetLogger(l *slog.Logger) {
	log = l
}
