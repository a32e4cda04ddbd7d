package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Setup installs a JSON logger on stdout, fanned out to logFile when set.
// The returned cleanup closes the log file.
func Setup(level string, logFile string) func() error {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	stdoutHandler := slog.NewJSONHandler(os.Stdout, opts)

	if strings.TrimSpace(logFile) == "" {
		SetLogger(slog.New(stdoutHandler))
		return func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		SetLogger(slog.New(stdoutHandler))
		Error("telemetry.log_file_open_failed", map[string]any{"file": logFile, "error": err.Error()})
		return func() error { return nil }
	}

	SetLogger(slog.New(slogmulti.Fanout(stdoutHandler, slog.NewJSONHandler(file, opts))))
	return file.Close
}

// SetupWithWriters routes log output to the given writers (for testing).
func SetupWithWriters(level string, writers ...io.Writer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	}
	SetLogger(slog.New(slogmulti.Fanout(handlers...)))
}

// SetLogger replaces the process logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	current = l
	mu.Unlock()
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

func write(level slog.Level, msg string, fields map[string]any) {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	Logger().LogAttrs(context.Background(), level, msg, attrs...)
}
