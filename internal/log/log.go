package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(os.Stdout, "json", "info"))
}

// New builds a logger writing to w. format is "json" or "text".
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetLogger replaces the process logger used by the helpers below.
func SetLogger(l *slog.Logger) { current.Store(l) }

func Logger() *slog.Logger { return current.Load() }

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func write(level slog.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := current.Load()
	attrs := make([]slog.Attr, 0, 8+len(fields))
	attrs = append(attrs, slog.String("kind", kind), slog.String("action", action))
	if c != nil {
		attrs = append(attrs,
			slog.String("ip", c.IP()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, slog.String("req_id", rid))
		}
		if uid, ok := c.Locals("userId").(int64); ok {
			attrs = append(attrs, slog.Int64("user_id", uid))
		}
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	if len(fields) > 0 {
		fs := make([]any, 0, len(fields))
		for k, v := range fields {
			fs = append(fs, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("fields", fs...))
	}
	ctx := context.Background()
	if c != nil {
		ctx = c.UserContext()
	}
	l.LogAttrs(ctx, level, action, attrs...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelInfo, "info", c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelInfo, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelWarn, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(slog.LevelError, "error", c, action, err, fields)
}
