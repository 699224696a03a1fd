// Package logger owns the process-wide zap logger and the Echo helpers that
// attach a request-scoped logger to each request.
package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// RequestIDKey is both the header name and the echo.Context key of the request id.
	RequestIDKey = "X-Request-ID"
	contextKey   = "logger"
)

var log *zap.Logger

// Init builds the global logger.  "prod" and "production" select JSON
// output; anything else gets the colored console encoder.
func Init(env, level string) *zap.Logger {
	var cfg zap.Config
	if env == "prod" || env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)

	l, err := cfg.Build()
	if err != nil {
		panic("logger: build failed: " + err.Error())
	}
	log = l
	log.Info("logger initialized", zap.String("env", env), zap.String("level", lvl.String()))
	return log
}

// L returns the global logger, or a no-op logger when Init was never
// called (tests).
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// FromEcho returns the request-scoped logger, falling back to the global
// one tagged with whatever request id is known.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(contextKey).(*zap.Logger); ok {
		return l
	}
	rid, _ := c.Get(RequestIDKey).(string)
	if rid == "" {
		rid = c.Request().Header.Get(RequestIDKey)
	}
	return L().With(zap.String("request_id", rid))
}

// Middleware stores a request-scoped logger on the context and writes one
// access-log line per request.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid, _ := c.Get(RequestIDKey).(string)
			if rid == "" {
				rid = c.Response().Header().Get(RequestIDKey)
			}
			l := base.With(zap.String("request_id", rid))
			c.Set(contextKey, l)

			err := next(c)
			if err != nil {
				// let the error handler set the final status before logging
				c.Error(err)
			}

			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				fields = append(fields, zap.String("user_id", uid))
			}
			if err != nil {
				l.Warn("request failed", append(fields, zap.Error(err))...)
			} else {
				l.Info("request completed", fields...)
			}
			return nil
		}
	}
}
