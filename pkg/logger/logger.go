// Package logger is the structured logger shared by the API server, the
// billing jobs and the repositories. Every record carries a service
// attribute so lines from the HTTP process and the CLI can be told apart.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog's error level. It is reserved for failures
// that leave the ledger or billing state in doubt.
const LevelCritical = slog.Level(12)

const defaultService = "sukha-pms"

// Logger is the logging surface handed to services and handlers.
//
// BusinessError records an expected rejection (a missing room, an invalid
// transition) at warn. InternalError records an unexpected failure at error.
// Both ignore a nil err, so callers can pass the result of an operation
// without checking it first.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

// Options mirrors the LOG_LEVEL, LOG_FORMAT, ENV and SERVICE_NAME variables.
type Options struct {
	Level   string
	Format  string
	Env     string
	Service string
}

type slogLogger struct {
	base *slog.Logger
}

func NewFromEnv() Logger {
	return NewWithOptions(os.Stdout, Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Env:     os.Getenv("ENV"),
		Service: os.Getenv("SERVICE_NAME"),
	})
}

// NewWithOptions defaults to JSON at info, or debug when Env is development.
func NewWithOptions(output io.Writer, opts Options) Logger {
	service := strings.TrimSpace(opts.Service)
	if service == "" {
		service = defaultService
	}
	level := parseLevel(opts.Level, normalize(opts.Env))
	return New(output, level, parseFormat(opts.Format)).With("service", service)
}

// New builds a logger without the service attribute. Format is "json" or
// "text"; anything else falls back to text.
func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{Level: level, ReplaceAttr: renameLevel}

	var handler slog.Handler
	if normalize(format) == "json" {
		handler = slog.NewJSONHandler(output, options)
	} else {
		handler = slog.NewTextHandler(output, options)
	}
	return &slogLogger{base: slog.New(handler)}
}

// Nop discards everything; used by tests and CLI jobs run with --quiet.
func Nop() Logger {
	return New(io.Discard, LevelCritical+1, "text")
}

func (l *slogLogger) Debug(message string, args ...any) { l.base.Debug(message, args...) }
func (l *slogLogger) Info(message string, args ...any)  { l.base.Info(message, args...) }
func (l *slogLogger) Warn(message string, args ...any)  { l.base.Warn(message, args...) }
func (l *slogLogger) Error(message string, args ...any) { l.base.Error(message, args...) }

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	l.logErr(slog.LevelWarn, message, err, args)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	l.logErr(slog.LevelError, message, err, args)
}

func (l *slogLogger) logErr(level slog.Level, message string, err error, args []any) {
	if err == nil {
		return
	}
	l.base.Log(context.Background(), level, message, append([]any{"err", err}, args...)...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

var levelsByName = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
	"fatal":    LevelCritical,
}

func parseLevel(value, env string) slog.Level {
	if level, ok := levelsByName[normalize(value)]; ok {
		return level
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func parseFormat(value string) string {
	if normalize(value) == "text" {
		return "text"
	}
	return "json"
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// renameLevel prints LevelCritical as CRITICAL instead of slog's "ERROR+4".
func renameLevel(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}
