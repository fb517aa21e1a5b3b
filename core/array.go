package core

import "fmt"

// NDArray 是行优先存储的 N 维数值数组，对应模型直接返回的张量/数组输出。
type NDArray struct {
	Shape []int
	Data  []float64
}

// NewArray 创建一维数组
func NewArray(values []float64) *NDArray {
	return &NDArray{
		Shape: []int{len(values)},
		Data:  append([]float64(nil), values...),
	}
}

// NewNDArray 创建指定形状的数组，元素个数必须与形状乘积一致。
func NewNDArray(shape []int, data []float64) (*NDArray, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, Errorf(ModuleFrame, ErrorCodeInvalidInput, "ndarray: negative dimension in shape %v", shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, Errorf(ModuleFrame, ErrorCodeLengthMismatch, "ndarray: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &NDArray{
		Shape: append([]int(nil), shape...),
		Data:  append([]float64(nil), data...),
	}, nil
}

// NewMatrix 由二维切片创建 rank-2 数组，所有行长度必须一致。
func NewMatrix(rows [][]float64) (*NDArray, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, Errorf(ModuleFrame, ErrorCodeUnsupportedShape, "ndarray: ragged row %d has %d elements, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &NDArray{Shape: []int{len(rows), cols}, Data: data}, nil
}

// Rank 返回维度数
func (a *NDArray) Rank() int { return len(a.Shape) }

// Len 返回第一维长度
func (a *NDArray) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

func (a *NDArray) String() string {
	return fmt.Sprintf("NDArray(shape=%v)", a.Shape)
}
