package core

import (
	"fmt"
	"math"
)

// Series 是带行索引的一维数值序列。
type Series struct {
	Name   string
	Index  []string
	Values []float64
}

// NewSeries 创建 Series，index 为 nil 时使用位置索引。
func NewSeries(name string, index []string, values []float64) (*Series, error) {
	if index == nil {
		index = PositionalIndex(0, len(values))
	}
	if len(index) != len(values) {
		return nil, Errorf(ModuleFrame, ErrorCodeLengthMismatch, "series: index length %d does not match %d values", len(index), len(values))
	}
	return &Series{
		Name:   name,
		Index:  append([]string(nil), index...),
		Values: append([]float64(nil), values...),
	}, nil
}

// Len 返回元素个数
func (s *Series) Len() int { return len(s.Values) }

// Copy 深拷贝
func (s *Series) Copy() *Series {
	return &Series{
		Name:   s.Name,
		Index:  append([]string(nil), s.Index...),
		Values: append([]float64(nil), s.Values...),
	}
}

// WithIndex 返回替换了索引的拷贝，原 Series 不变。
func (s *Series) WithIndex(index []string) (*Series, error) {
	return NewSeries(s.Name, index, s.Values)
}

// Get 按索引取值
func (s *Series) Get(id string) (float64, bool) {
	for i, k := range s.Index {
		if k == id {
			return s.Values[i], true
		}
	}
	return 0, false
}

// ToFrame 转为单列 Frame
func (s *Series) ToFrame(column string) (*Frame, error) {
	f := NewFrame(s.Index)
	if err := f.AddColumn(column, s.Values); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Series) String() string {
	return fmt.Sprintf("Series(name=%q, len=%d)", s.Name, s.Len())
}

// ConcatSeries 按顺序拼接多个 Series，名称取第一个。
func ConcatSeries(parts ...*Series) *Series {
	out := &Series{Index: []string{}, Values: []float64{}}
	for i, p := range parts {
		if i == 0 {
			out.Name = p.Name
		}
		out.Index = append(out.Index, p.Index...)
		out.Values = append(out.Values, p.Values...)
	}
	return out
}

func nan() float64 { return math.NaN() }
