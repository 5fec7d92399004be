package utils

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

const loggerKey = "logger"

// Logger is the logging surface handlers and middleware depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	Slog() *slog.Logger
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps a *slog.Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) Slog() *slog.Logger { return s.l }

// ContextLogger stores a request-scoped logger carrying the request id.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logger
		if requestID := c.GetString("request_id"); requestID != "" {
			l = logger.With("request_id", requestID)
		}
		c.Set(loggerKey, l)
		c.Next()
	}
}

// FromContext returns the request-scoped logger, or fallback when none was set.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return fallback
}

// LoggerMiddleware logs one line per request after it completes.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		l := FromContext(c, logger)
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			l.Error("Request completed", args...)
		case status >= 400:
			l.Warn("Request completed", args...)
		default:
			l.Info("Request completed", args...)
		}
	}
}
