// Package pipeline 把特征来源、模型、输出适配与结果存储串成一次完整的打分流程：
//
//	ids -> Source.Fetch -> feature.Apply -> adapter.PredictBatches -> Store.Save -> *core.ScoringData
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/rushteam/scorekit/adapter"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
	"github.com/rushteam/scorekit/pkg/logx"
)

// Pipeline 是一次打分流程的组合。Model 必填，Source / Store 可选。
type Pipeline struct {
	Name string

	// Source 按行标识获取输入（Run 使用）
	Source core.FrameSource

	// Processors 模型调用前的特征预处理（按顺序执行）
	Processors []feature.Processor

	// Model 回归模型
	Model core.Model

	// Store 预测结果存储（可选）
	Store core.ScoreStore

	// TTL 存储过期时间（秒），0 表示不过期
	TTL int

	// Batch 分批预测配置，Size <= 0 表示不分批
	Batch adapter.BatchConfig

	// Options 输出适配选项（Guard 等）
	Options []adapter.Option

	Logger *slog.Logger
}

// Run 从 Source 获取 ids 对应的输入并打分。
func (p *Pipeline) Run(ctx context.Context, ids []string) (*core.ScoringData, error) {
	if p.Source == nil {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeInvalidInput, "pipeline: source is not configured")
	}
	input, err := p.Source.Fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	return p.RunFrame(ctx, input)
}

// RunFrame 对给定输入打分，配置了 Store 时写入存储。
func (p *Pipeline) RunFrame(ctx context.Context, input *core.Frame) (*core.ScoringData, error) {
	if p.Model == nil {
		return nil, core.NewDomainError(core.ModuleAdapter, core.ErrorCodeInvalidInput, "pipeline: model is not configured")
	}
	logger := logx.OrNoop(p.Logger)
	start := time.Now()

	opts := make([]adapter.Option, 0, len(p.Options)+1)
	opts = append(opts, adapter.WithLogger(logger))
	opts = append(opts, p.Options...)

	data, err := p.predict(ctx, input, opts)
	if err != nil {
		logger.ErrorContext(ctx, "pipeline failed",
			slog.String("pipeline", p.Name),
			slog.String("model", p.Model.Name()),
			slog.Any("error", err))
		return nil, err
	}

	if p.Store != nil {
		if err := p.Store.Save(ctx, p.Model.Name(), data, p.TTL); err != nil {
			logger.ErrorContext(ctx, "save predictions failed",
				slog.String("store", p.Store.Name()),
				slog.Any("error", err))
			return nil, err
		}
	}

	logger.InfoContext(ctx, "pipeline completed",
		slog.String("pipeline", p.Name),
		slog.String("model", p.Model.Name()),
		slog.Int("rows", data.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (p *Pipeline) predict(ctx context.Context, input *core.Frame, opts []adapter.Option) (*core.ScoringData, error) {
	if len(p.Processors) > 0 && input != nil {
		processed, err := feature.Apply(input, p.Processors...)
		if err != nil {
			return nil, err
		}
		input = processed
	}
	return adapter.PredictBatches(ctx, p.Model, input, p.Batch, opts...)
}

// Close 释放 Model、Source、Store 持有的资源
func (p *Pipeline) Close() error {
	var errs []error
	if c, ok := p.Model.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.Source.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if p.Store != nil {
		errs = append(errs, p.Store.Close())
	}
	return errors.Join(errs...)
}
