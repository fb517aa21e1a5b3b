package model

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// LinearModel 实现了线性回归 (Linear Regression) 模型。
//
// 预测原理：y = Bias + sum(Weight_i * Feature_i)
//
// 输入中不存在的权重特征按 0 处理；输入中的 NaN 会传播到输出，由 adapter 拒绝。
type LinearModel struct {
	ModelName string             // 模型名称，默认 "linear"
	Bias      float64            // 偏置项 (Bias / Intercept)
	Weights   map[string]float64 // 特征权重 (Weights / Coefficients)
}

// LoadLinearModel 从 JSON 文件加载：{"name": "...", "bias": 1.0, "weights": {"area": 0.5}}
func LoadLinearModel(path string) (*LinearModel, error) {
	var raw struct {
		Name    string             `json:"name"`
		Bias    float64            `json:"bias"`
		Weights map[string]float64 `json:"weights"`
	}
	if err := loadJSON(path, &raw); err != nil {
		return nil, err
	}
	return &LinearModel{ModelName: raw.Name, Bias: raw.Bias, Weights: raw.Weights}, nil
}

func (m *LinearModel) Name() string {
	if m.ModelName == "" {
		return "linear"
	}
	return m.ModelName
}

// Predict 返回 rank-1 *core.NDArray，每行一个预测值。
func (m *LinearModel) Predict(ctx context.Context, input *core.Frame) (any, error) {
	out := make([]float64, input.NumRows())
	for i := range out {
		out[i] = m.Bias
	}
	for name, w := range m.Weights {
		col, ok := input.Column(name)
		if !ok {
			continue
		}
		for i, v := range col.Values {
			out[i] += w * v
		}
	}
	return core.NewArray(out), nil
}

var _ core.Model = (*LinearModel)(nil)
