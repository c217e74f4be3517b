// Package logging configures the application's structured loggers: a
// human-readable console handler plus rotating per-service file logs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

var defaultLevelVar = new(slog.LevelVar)

// Init initializes the default logger with a text handler on stderr.
// When debug is true the minimum level is lowered to Debug.
func Init(debug bool) {
	defaultLevelVar.Set(slog.LevelInfo)
	if debug {
		defaultLevelVar.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       defaultLevelVar,
		ReplaceAttr: replaceLevelNames,
	})
	slog.SetDefault(slog.New(handler))
}

// replaceLevelNames maps custom levels to their display names.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		if label, ok := levelNames[level]; ok {
			a.Value = slog.StringValue(label)
		}
	}
	return a
}

// NewFileLogger creates a JSON logger writing to a rotating log file. The
// returned closer flushes and closes the underlying writer; callers should
// invoke it during shutdown. On setup failure callers are expected to fall
// back to a discard logger, see ForService.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   false,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}

// ForService returns a file logger for the named service, falling back to a
// discard logger when the log file cannot be opened. The fallback keeps
// packages usable in tests and read-only environments.
func ForService(serviceName string, level slog.Leveler) *slog.Logger {
	logger, _, err := NewFileLogger(filepath.Join("logs", serviceName+".log"), serviceName, level)
	if err != nil {
		Error("Failed to initialize file logger", "service", serviceName, "error", err)
		fallback := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: level})
		return slog.New(fallback).With("service", serviceName)
	}
	return logger
}

// Debug logs at debug level using the default logger
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs at info level using the default logger
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs at warn level using the default logger
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs at error level using the default logger
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}
