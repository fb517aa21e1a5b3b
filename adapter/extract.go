package adapter

import (
	"github.com/rushteam/scorekit/core"
)

// 表格输出中的约定列名。同时包含 predictions 与 target 时，
// 输出来自 fast.ai 适配器：predictions 为概率数组，target 才是回归值。
const (
	ColumnPredictions = "predictions"
	ColumnTarget      = "target"
)

// OutputKind 描述原始输出的形态
type OutputKind string

const (
	KindFrame OutputKind = "frame"
	KindArray OutputKind = "array"
)

// Extracted 是从原始输出中抽取的预测序列
type Extracted struct {
	Kind   OutputKind
	Source string   // 取值来源：列名或 "array"
	Shape  []int    // 原始输出形状
	Values []float64
}

// ExtractPredictions 判定原始输出形态并抽取一维预测序列。
//
//   - *core.Frame 同时含 predictions 与 target 列：取 target
//   - *core.Frame 仅一列：取该列
//   - *core.Frame 其他列数：UNSUPPORTED_SHAPE
//   - 一维数组（*core.NDArray rank 1、[]float64、[]float32）：直接使用
//   - 非一维数组（*core.NDArray rank != 1、[][]float64）：UNSUPPORTED_SHAPE
//   - 其他类型：UNSUPPORTED_TYPE
func ExtractPredictions(output any) (*Extracted, error) {
	switch out := output.(type) {
	case *core.Frame:
		if out == nil {
			break
		}
		return extractFrame(out)
	case *core.NDArray:
		if out == nil {
			break
		}
		if out.Rank() != 1 {
			return nil, unsupportedShape(out.Shape)
		}
		return &Extracted{Kind: KindArray, Source: "array", Shape: copyShape(out.Shape), Values: append([]float64(nil), out.Data...)}, nil
	case []float64:
		return &Extracted{Kind: KindArray, Source: "array", Shape: []int{len(out)}, Values: append([]float64(nil), out...)}, nil
	case []float32:
		values := make([]float64, len(out))
		for i, v := range out {
			values[i] = float64(v)
		}
		return &Extracted{Kind: KindArray, Source: "array", Shape: []int{len(out)}, Values: values}, nil
	case [][]float64:
		cols := 0
		if len(out) > 0 {
			cols = len(out[0])
		}
		return nil, unsupportedShape([]int{len(out), cols})
	}
	return nil, core.Errorf(core.ModuleAdapter, core.ErrorCodeUnsupportedType, "can't handle model output: %T", output)
}

func extractFrame(f *core.Frame) (*Extracted, error) {
	shape := f.Shape()
	var column string
	switch {
	case f.HasColumn(ColumnPredictions) && f.HasColumn(ColumnTarget):
		column = ColumnTarget
	case f.NumColumns() == 1:
		column = f.Columns()[0]
	default:
		return nil, unsupportedShape(shape[:])
	}
	s, _ := f.Column(column)
	return &Extracted{Kind: KindFrame, Source: column, Shape: shape[:], Values: s.Values}, nil
}

func unsupportedShape(shape []int) error {
	return core.Errorf(core.ModuleAdapter, core.ErrorCodeUnsupportedShape, "can't handle model output of shape=%v", shape)
}

func copyShape(shape []int) []int {
	return append([]int(nil), shape...)
}
