package manifest

import "log/slog"

// Package logger for catalog operations
var log = slog.Default()

// SetLogger configures the package logger
func SetLogger(l *slog.Logger) {
	log = l
}
