package adapter

import (
	"log/slog"

	"github.com/rushteam/scorekit/pkg/dsl"
	"github.com/rushteam/scorekit/pkg/logx"
)

// Options 控制适配过程
type Options struct {
	// Logger 日志（默认丢弃）
	Logger *slog.Logger

	// Guard 逐行校验规则（可选）
	Guard *dsl.Guard

	// SeriesName 数组输出时预测序列的名称，默认 "prediction"
	SeriesName string
}

// Option 配置适配过程
type Option func(*Options)

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithGuard 设置逐行校验规则
func WithGuard(g *dsl.Guard) Option {
	return func(o *Options) {
		o.Guard = g
	}
}

// WithSeriesName 设置数组输出时的序列名称
func WithSeriesName(name string) Option {
	return func(o *Options) {
		o.SeriesName = name
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	o.Logger = logx.OrNoop(o.Logger)
	return o
}
