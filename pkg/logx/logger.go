// Package logx 提供基于 log/slog 的结构化日志构造与统一字段。
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger 使用指定 handler 创建 Logger，handler 为 nil 时输出文本日志到 stderr。
func NewLogger(handler slog.Handler) *slog.Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}

// NewJSONLogger 创建输出 JSON 的 Logger
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger 创建输出文本的 Logger
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger 丢弃所有日志
func NoopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNoop 在 l 为 nil 时返回 NoopLogger
func OrNoop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NoopLogger()
	}
	return l
}

// ParseLevel 解析 "debug" / "info" / "warn" / "error"，无法识别时返回 info。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New 按格式（"json" / "text"）与级别创建 Logger，format 为 "none" 时丢弃日志。
func New(w io.Writer, format, level string) *slog.Logger {
	switch strings.ToLower(format) {
	case "none", "off":
		return NoopLogger()
	case "json":
		return NewJSONLogger(w, ParseLevel(level))
	default:
		return NewTextLogger(w, ParseLevel(level))
	}
}

// LogPredict 记录一次模型调用
func LogPredict(ctx context.Context, l *slog.Logger, model string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "predict failed",
			"model", model,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "predict completed",
		"model", model,
		"rows", rows,
	)
}
