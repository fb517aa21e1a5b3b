package adapter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scorekit/core"
)

// BatchConfig 控制分批预测
type BatchConfig struct {
	// Size 每批行数，<= 0 表示不分批
	Size int

	// Concurrency 最大并发批数，<= 0 表示 1
	Concurrency int
}

// PredictBatches 将输入按行切分为多批，并发调用 PredictRegression，按输入顺序合并结果。
// 任一批失败会取消其余批次并返回该错误。
func PredictBatches(ctx context.Context, model core.Model, input *core.Frame, cfg BatchConfig, opts ...Option) (*core.ScoringData, error) {
	if input == nil {
		return nil, core.NewDomainError(core.ModuleAdapter, core.ErrorCodeInvalidInput, "input frame is required")
	}
	rows := input.NumRows()
	if cfg.Size <= 0 || rows <= cfg.Size {
		return PredictRegression(ctx, model, input, opts...)
	}

	numBatches := (rows + cfg.Size - 1) / cfg.Size
	results := make([]*core.ScoringData, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := 0; i < numBatches; i++ {
		start := i * cfg.Size
		end := min(start+cfg.Size, rows)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := PredictRegression(gctx, model, input.Slice(start, end), opts...)
			if err != nil {
				return fmt.Errorf("batch %d [%d:%d]: %w", i, start, end, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := make([]*core.Series, len(results))
	for i, r := range results {
		parts[i] = r.Preds
	}
	return core.NewScoringData(core.ConcatSeries(parts...))
}
