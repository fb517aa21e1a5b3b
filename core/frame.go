package core

import (
	"fmt"
	"strconv"
)

// Frame 是带行索引的列式数值表，用于承载模型输入与表格形式的模型输出。
//
// 约定：
//   - 列按添加顺序排列，列名唯一
//   - 所有列长度一致
//   - index 为 nil 时使用位置索引 "0", "1", ...
//   - 零值可用，等价于 NewFrame(nil)
type Frame struct {
	index   []string
	columns []string
	data    map[string][]float64
	rows    int
	sized   bool // 行数已由 index 或首列确定
}

// NewFrame 创建一个空 Frame。index 可为 nil（位置索引）。
func NewFrame(index []string) *Frame {
	f := &Frame{data: make(map[string][]float64)}
	if index != nil {
		f.index = append([]string(nil), index...)
		f.rows = len(index)
		f.sized = true
	}
	return f
}

// FrameFromColumns 按列名顺序构建 Frame。
func FrameFromColumns(index []string, names []string, columns map[string][]float64) (*Frame, error) {
	f := NewFrame(index)
	for _, name := range names {
		if err := f.AddColumn(name, columns[name]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FrameFromRecords 由行记录（列名 -> 值）构建 Frame，列顺序由 names 决定；记录中缺失的值为 NaN。
func FrameFromRecords(index []string, names []string, records []map[string]float64) (*Frame, error) {
	if index != nil && len(index) != len(records) {
		return nil, Errorf(ModuleFrame, ErrorCodeLengthMismatch, "frame: index length %d does not match %d records", len(index), len(records))
	}
	cols := make(map[string][]float64, len(names))
	for _, name := range names {
		values := make([]float64, len(records))
		for i, rec := range records {
			v, ok := rec[name]
			if !ok {
				v = nan()
			}
			values[i] = v
		}
		cols[name] = values
	}
	f, err := FrameFromColumns(index, names, cols)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 && index == nil {
		f.rows = len(records)
		f.sized = true
	}
	return f, nil
}

// AddColumn 追加一列。第一列决定行数（若未指定 index），之后各列长度必须一致。
func (f *Frame) AddColumn(name string, values []float64) error {
	if _, exists := f.data[name]; exists {
		return Errorf(ModuleFrame, ErrorCodeInvalidInput, "frame: duplicate column %q", name)
	}
	if f.sized && len(values) != f.rows {
		return Errorf(ModuleFrame, ErrorCodeLengthMismatch, "frame: column %q has %d rows, want %d", name, len(values), f.rows)
	}
	if f.data == nil {
		f.data = make(map[string][]float64)
	}
	f.rows = len(values)
	f.sized = true
	f.columns = append(f.columns, name)
	f.data[name] = append([]float64(nil), values...)
	return nil
}

// Columns 返回列名（按添加顺序）
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// HasColumn 判断列是否存在
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Column 以 Series 形式返回指定列（值为拷贝）
func (f *Frame) Column(name string) (*Series, bool) {
	values, ok := f.data[name]
	if !ok {
		return nil, false
	}
	return &Series{
		Name:   name,
		Index:  f.Index(),
		Values: append([]float64(nil), values...),
	}, true
}

// NumRows 返回行数
func (f *Frame) NumRows() int {
	return f.rows
}

// NumColumns 返回列数
func (f *Frame) NumColumns() int { return len(f.columns) }

// Shape 返回 (行数, 列数)
func (f *Frame) Shape() [2]int { return [2]int{f.NumRows(), f.NumColumns()} }

// Index 返回行索引；未设置时返回位置索引。
func (f *Frame) Index() []string {
	if f.index != nil {
		return append([]string(nil), f.index...)
	}
	return PositionalIndex(0, f.NumRows())
}

// HasIndex 判断是否显式设置了行索引
func (f *Frame) HasIndex() bool { return f.index != nil }

// Row 返回第 i 行（列名 -> 值）
func (f *Frame) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(f.columns))
	for _, name := range f.columns {
		row[name] = f.data[name][i]
	}
	return row
}

// Values 返回按行展开的二维数据（列顺序同 Columns）
func (f *Frame) Values() [][]float64 {
	out := make([][]float64, f.NumRows())
	for i := range out {
		row := make([]float64, len(f.columns))
		for j, name := range f.columns {
			row[j] = f.data[name][i]
		}
		out[i] = row
	}
	return out
}

// Slice 返回 [start, end) 行组成的新 Frame，保留原索引。
func (f *Frame) Slice(start, end int) *Frame {
	idx := f.Index()[start:end]
	out := NewFrame(idx)
	for _, name := range f.columns {
		// 长度由 idx 保证一致，不会失败
		_ = out.AddColumn(name, f.data[name][start:end])
	}
	return out
}

// WithIndex 返回使用新索引的拷贝
func (f *Frame) WithIndex(index []string) (*Frame, error) {
	if len(index) != f.NumRows() {
		return nil, Errorf(ModuleFrame, ErrorCodeLengthMismatch, "frame: index length %d does not match %d rows", len(index), f.NumRows())
	}
	out := NewFrame(index)
	for _, name := range f.columns {
		if err := out.AddColumn(name, f.data[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ConcatFrames 按行拼接多个列结构相同的 Frame。
func ConcatFrames(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return NewFrame(nil), nil
	}
	names := frames[0].columns
	var index []string
	cols := make(map[string][]float64, len(names))
	for i, fr := range frames {
		if len(fr.columns) != len(names) {
			return nil, Errorf(ModuleFrame, ErrorCodeInvalidInput, "frame: part %d has %d columns, want %d", i, len(fr.columns), len(names))
		}
		index = append(index, fr.Index()...)
		for _, name := range names {
			values, ok := fr.data[name]
			if !ok {
				return nil, Errorf(ModuleFrame, ErrorCodeInvalidInput, "frame: part %d is missing column %q", i, name)
			}
			cols[name] = append(cols[name], values...)
		}
	}
	if index == nil {
		index = []string{}
	}
	return FrameFromColumns(index, names, cols)
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(rows=%d, columns=%v)", f.NumRows(), f.columns)
}

// PositionalIndex 生成 [start, start+n) 的位置索引
func PositionalIndex(start, n int) []string {
	idx := make([]string, n)
	for i := range idx {
		idx[i] = strconv.Itoa(start + i)
	}
	return idx
}
