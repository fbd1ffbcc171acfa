// Package log is a thin, process-wide wrapper around slog.  Packages log through the functions here so the
// destination can be chosen once at startup; nothing is logged until SetDefaultLogger is called.
package log

import (
	"log/slog"
	"sync"
)

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// SetDefaultLogger sets the logger used by the package level logging functions
func SetDefaultLogger(logger *Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

// DefaultLogger returns the current default logger, which may be nil
func DefaultLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// With returns a child of the default logger that adds args to every record.  Without a default logger the
// result is nil, which is still safe to log through.
func With(args ...any) *Logger {
	return DefaultLogger().With(args...)
}

// Debug logs at debug Level using the default logger.
// See (*Logger).Debug for more information.
func Debug(msg string, args ...any) {
	DefaultLogger().log(slog.LevelDebug, msg, args...)
}

// Info logs at info Level using the default logger.
// See (*Logger).Info for more information.
func Info(msg string, args ...any) {
	DefaultLogger().log(slog.LevelInfo, msg, args...)
}

// Warn logs at warn Level using the default logger.
// See (*Logger).Warn for more information.
func Warn(msg string, args ...any) {
	DefaultLogger().log(slog.LevelWarn, msg, args...)
}

// Error logs at error Level using the default logger.
// See (*Logger).Error for more information.
func Error(msg string, args ...any) {
	DefaultLogger().log(slog.LevelError, msg, args...)
}

// Trace logs at debug level, but only if trace logging is enabled.  mpv's raw IPC traffic goes here.
// See (*Logger).Trace for more information.
func Trace(msg string, args ...any) {
	DefaultLogger().Trace(msg, args...)
}
