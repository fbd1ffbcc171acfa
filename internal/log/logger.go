package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger wraps slog with the level handling kava needs, including the fake trace level.
type Logger struct {
	logger       *slog.Logger
	file         *os.File
	traceEnabled bool
}

// Config contains logging information used to set up the logging framework
type Config struct {
	// Log Level.  One of: trace, debug, info, warn, error
	Level string
	// Output format.  One of: json, text.  Defaults to json.
	Format string
	// Path to the file to log into.  Logs go to stderr when empty; stdout is left alone for the TUI.
	FilePath string
}

// New creates a logger from config.  The caller owns the returned logger and must Close it.
func New(config Config) (*Logger, error) {
	var out io.Writer = os.Stderr
	var file *os.File

	if config.FilePath != "" {
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}

		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		file = f
	}

	return &Logger{
		logger:       slog.New(newHandler(out, config)),
		file:         file,
		traceEnabled: strings.EqualFold(config.Level, "trace"),
	}, nil
}

// NewWithWriter creates a logger that writes to w.  Useful for tests.
func NewWithWriter(config Config, w io.Writer) *Logger {
	return &Logger{
		logger:       slog.New(newHandler(w, config)),
		traceEnabled: strings.EqualFold(config.Level, "trace"),
	}
}

func newHandler(w io.Writer, config Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(config.Level),
	}
	if strings.EqualFold(config.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// With returns a logger that adds args to every record.  A nil logger stays nil.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		logger:       l.logger.With(args...),
		traceEnabled: l.traceEnabled,
	}
}

// Close the log file, if there is one
func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	if err := l.file.Close(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error closing logger: %v\n", err)
	}
}

// log writes one record.  Every method funnels through here, and a nil logger drops the record.
func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

// Debug logs a message a debug Level
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs a message at info Level
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at warn Level
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs a message at error Level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// Trace logs at debug level with a TRACE prefix, but only when the logger was configured at trace level.
// This is a 'fake' trace level; slog has none.
func (l *Logger) Trace(msg string, args ...any) {
	if l == nil || !l.traceEnabled {
		return
	}
	l.log(slog.LevelDebug, "TRACE: "+msg, args...)
}

// parseLogLevel is a helper to convert a string log Level into the slog version.  Defaults to info if a matching log
// Level cannot be found.
func parseLogLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug", "trace":
		// Trace is handled by this package on top of slog's debug level
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
