package model

import (
	"context"
	"fmt"

	"github.com/rushteam/scorekit/core"
)

// MLPModel 是全连接前馈网络（Multi-Layer Perceptron）回归模型。
//
// 结构：
//   - 输入按 Inputs 指定的列顺序取值
//   - 隐藏层使用 ReLU 激活，最后一层不激活（回归输出）
//   - Weights[layer][neuron][input]，Biases[layer][neuron]
//
// 输出形态：
//   - 最后一层 1 个神经元：rank-1 *core.NDArray
//   - 多个神经元且设置了 OutputNames：*core.Frame，每个神经元一列
//   - 多个神经元且未命名：rank-2 *core.NDArray（adapter 会拒绝）
type MLPModel struct {
	ModelName   string
	Inputs      []string
	Weights     [][][]float64
	Biases      [][]float64
	OutputNames []string
}

// LoadMLPModel 从 JSON 文件加载：
//
//	{"name": "...", "inputs": ["area", "rooms"], "weights": [[[...]]], "biases": [[...]], "output_names": [...]}
func LoadMLPModel(path string) (*MLPModel, error) {
	var raw struct {
		Name        string        `json:"name"`
		Inputs      []string      `json:"inputs"`
		Weights     [][][]float64 `json:"weights"`
		Biases      [][]float64   `json:"biases"`
		OutputNames []string      `json:"output_names"`
	}
	if err := loadJSON(path, &raw); err != nil {
		return nil, err
	}
	m := &MLPModel{
		ModelName:   raw.Name,
		Inputs:      raw.Inputs,
		Weights:     raw.Weights,
		Biases:      raw.Biases,
		OutputNames: raw.OutputNames,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MLPModel) Name() string {
	if m.ModelName == "" {
		return "mlp"
	}
	return m.ModelName
}

// Validate 检查各层维度是否衔接
func (m *MLPModel) Validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("mlp: no layers")
	}
	if len(m.Biases) != len(m.Weights) {
		return fmt.Errorf("mlp: %d weight layers but %d bias layers", len(m.Weights), len(m.Biases))
	}
	prev := len(m.Inputs)
	for l, layer := range m.Weights {
		if len(layer) == 0 {
			return fmt.Errorf("mlp: layer %d has no neurons", l)
		}
		if len(m.Biases[l]) != len(layer) {
			return fmt.Errorf("mlp: layer %d has %d neurons but %d biases", l, len(layer), len(m.Biases[l]))
		}
		for j, w := range layer {
			if len(w) != prev {
				return fmt.Errorf("mlp: layer %d neuron %d has %d weights, want %d", l, j, len(w), prev)
			}
		}
		prev = len(layer)
	}
	if len(m.OutputNames) > 0 && len(m.OutputNames) != prev {
		return fmt.Errorf("mlp: %d output names for %d outputs", len(m.OutputNames), prev)
	}
	return nil
}

// Predict 对每行做前向传播。
func (m *MLPModel) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cols := make([][]float64, len(m.Inputs))
	for i, name := range m.Inputs {
		col, ok := input.Column(name)
		if !ok {
			return nil, fmt.Errorf("mlp: input column %q not found", name)
		}
		cols[i] = col.Values
	}

	rows := input.NumRows()
	outDim := len(m.Weights[len(m.Weights)-1])
	data := make([]float64, 0, rows*outDim)
	x := make([]float64, len(m.Inputs))
	for r := 0; r < rows; r++ {
		for i := range cols {
			x[i] = cols[i][r]
		}
		data = append(data, m.forward(x)...)
	}

	if outDim == 1 {
		return core.NewArray(data), nil
	}
	if len(m.OutputNames) > 0 {
		out := core.NewFrame(nil)
		for j, name := range m.OutputNames {
			values := make([]float64, rows)
			for r := 0; r < rows; r++ {
				values[r] = data[r*outDim+j]
			}
			if err := out.AddColumn(name, values); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return core.NewNDArray([]int{rows, outDim}, data)
}

// forward 前向传播。
func (m *MLPModel) forward(input []float64) []float64 {
	current := input
	last := len(m.Weights) - 1
	for l, layer := range m.Weights {
		next := make([]float64, len(layer))
		for j, w := range layer {
			sum := m.Biases[l][j]
			for k, v := range current {
				sum += w[k] * v
			}
			// ReLU 激活（最后一层除外）
			if l < last {
				sum = relu(sum)
			}
			next[j] = sum
		}
		current = next
	}
	return current
}

// relu ReLU 激活函数。
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

var _ core.Model = (*MLPModel)(nil)
