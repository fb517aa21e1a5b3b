// Package scorekit 是一个回归模型打分工具包。
//
// 设计要点：
// - Adapter-first: 不同模型/服务的原始输出（表格、数组、张量）统一适配为 ScoringData
// - Fail-fast: 形状、类型、空值、NaN 问题立即返回带错误码的 DomainError，不做部分结果
// - Pipeline: Source → Feature → Model → Adapter → Store 按需组合，配置驱动
package scorekit

import (
	"context"

	"github.com/rushteam/scorekit/adapter"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
)

// 轻量 facade：便于用户直接 import "scorekit" 使用核心抽象。
type (
	Frame       = core.Frame
	Series      = core.Series
	NDArray     = core.NDArray
	ScoringData = core.ScoringData
	Model       = core.Model
	DomainError = core.DomainError
	Pipeline    = pipeline.Pipeline
)

// Predict 调用模型并把输出适配为 ScoringData，等价于 adapter.PredictRegression。
func Predict(ctx context.Context, m Model, input *Frame, opts ...adapter.Option) (*ScoringData, error) {
	return adapter.PredictRegression(ctx, m, input, opts...)
}

// Adapt 把已有的模型输出适配为 ScoringData，等价于 adapter.AdaptRegression。
func Adapt(output any, input *Frame, opts ...adapter.Option) (*ScoringData, error) {
	return adapter.AdaptRegression(output, input, opts...)
}
