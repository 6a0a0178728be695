// Package logger provides structured logging utilities backed by logrus
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration
type Config struct {
	Level      string `yaml:"level" mapstructure:"level"`             // debug, info, warn, error, fatal
	Format     string `yaml:"format" mapstructure:"format"`           // text or json
	Output     string `yaml:"output" mapstructure:"output"`           // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"` // RFC3339, RFC3339Nano, etc
}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	return l
}

// Init initializes the logger with configuration
func Init(cfg Config) {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	timeFormat := strings.TrimSpace(cfg.TimeFormat)
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timeFormat})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timeFormat})
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		base.SetOutput(os.Stdout)
	case "stderr":
		base.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			base.SetOutput(os.Stdout)
			base.Warnf("logger: failed to open log file %s: %v", cfg.Output, err)
		} else {
			base.SetOutput(f)
		}
	}
}

// Logrus exposes the underlying logger for middleware that needs an entry
func Logrus() *logrus.Logger {
	return base
}

// Debug logs debug message (only shown when level=debug)
func Debug(msg string) { base.Debug(msg) }

// Debugf logs formatted debug message
func Debugf(format string, args ...interface{}) { base.Debugf(format, args...) }

// Info logs info message
func Info(msg string) { base.Info(msg) }

// Infof logs formatted info message
func Infof(format string, args ...interface{}) { base.Infof(format, args...) }

// Warn logs warning message
func Warn(msg string) { base.Warn(msg) }

// Warnf logs formatted warning message
func Warnf(format string, args ...interface{}) { base.Warnf(format, args...) }

// Error logs error message
func Error(msg string) { base.Error(msg) }

// Errorf logs formatted error message
func Errorf(format string, args ...interface{}) { base.Errorf(format, args...) }

// Fatal logs fatal message and exits
func Fatal(msg string) { base.Fatal(msg) }

// Fatalf logs formatted fatal message and exits
func Fatalf(format string, args ...interface{}) { base.Fatalf(format, args...) }

// WithFields returns a log message with structured fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{entry: base.WithFields(logrus.Fields(fields))}
}

// FieldLogger allows structured logging with fields
type FieldLogger struct {
	entry *logrus.Entry
}

func (l *FieldLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *FieldLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *FieldLogger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *FieldLogger) Error(msg string) { l.entry.Error(msg) }

// WithField adds one more field
func (l *FieldLogger) WithField(key string, value interface{}) *FieldLogger {
	return &FieldLogger{entry: l.entry.WithField(key, value)}
}

// Protocol-specific logging with structured fields

// HTTP logs HTTP protocol activity
func HTTP(method, path string, status, latencyMs int) {
	WithFields(map[string]interface{}{
		"protocol": "http",
		"method":   method,
		"path":     path,
		"status":   status,
		"latency":  latencyMs,
	}).Info(fmt.Sprintf("HTTP %s %s %d - %dms", method, path, status, latencyMs))
}

// GRPC logs gRPC protocol activity
func GRPC(method, params string, latencyMs int) {
	WithFields(map[string]interface{}{
		"protocol": "grpc",
		"method":   method,
		"params":   params,
		"latency":  latencyMs,
	}).Info(fmt.Sprintf("gRPC %s(%s) - %dms", method, params, latencyMs))
}

// Context-aware logging (for request tracing)
type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores the request ID for later log calls
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithRequestID extracts request ID from context and logs with it
func WithRequestID(ctx context.Context) *FieldLogger {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return WithFields(map[string]interface{}{
			"request_id": requestID,
		})
	}
	return WithFields(nil)
}
