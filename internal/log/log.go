// Package log writes structured, action-oriented JSON entries through zap.
// Every entry carries the request context (request id, ip, method, path,
// status, user id) when a fiber context is given.
package log

import (
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init builds the process logger. An empty file logs to stdout only.
func Init(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	if file != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, file)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	Set(l)
	return l, nil
}

// Set replaces the process logger and returns a func restoring the old one.
func Set(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() { Set(prev) }
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Sync() { _ = L().Sync() }

func write(level zapcore.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := L()
	if ce := l.Check(level, action); ce != nil {
		fs := make([]zap.Field, 0, 10)
		fs = append(fs, zap.String("kind", kind), zap.String("action", action))
		if c != nil {
			fs = append(fs,
				zap.String("ip", c.IP()),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
			)
			if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
				fs = append(fs, zap.String("req_id", rid))
			}
			if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
				fs = append(fs, zap.String("user_id", uid))
			}
		}
		if err != nil {
			fs = append(fs, zap.Error(err))
		}
		if len(fields) > 0 {
			fs = append(fs, zap.Any("fields", fields))
		}
		ce.Write(fs...)
	}
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "info", c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, "error", c, action, err, fields)
}

// Fatal logs and exits; used by main before the server is up.
func Fatal(action string, err error) {
	L().Error(action, zap.String("kind", "error"), zap.Error(err))
	Sync()
	os.Exit(1)
}
