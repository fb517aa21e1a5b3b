package core

import "context"

// Model 是回归模型的领域接口：输入一批行，返回模型的原始输出。
//
// 设计原则：
//   - 定义在领域层（core），由 model（本地模型）与 service（远程模型服务）实现
//   - 原始输出不做解释，交由 adapter 判定形状并抽取预测序列
//
// 原始输出常见形式：
//   - *Frame：带列名的表格（如 MLflow pyfunc 返回 DataFrame）
//   - *NDArray / []float64 / [][]float64：数组或张量
type Model interface {
	Name() string
	Predict(ctx context.Context, input *Frame) (any, error)
}

// ModelFunc 将函数包装为 Model，常用于测试或内联模型。
type ModelFunc struct {
	ModelName string
	Fn        func(ctx context.Context, input *Frame) (any, error)
}

func (m *ModelFunc) Name() string {
	if m.ModelName == "" {
		return "func"
	}
	return m.ModelName
}

func (m *ModelFunc) Predict(ctx context.Context, input *Frame) (any, error) {
	return m.Fn(ctx, input)
}

var _ Model = (*ModelFunc)(nil)
