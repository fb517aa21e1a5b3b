package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_AddColumn(t *testing.T) {
	f := NewFrame(nil)
	require.NoError(t, f.AddColumn("a", []float64{1, 2, 3}))
	require.NoError(t, f.AddColumn("b", []float64{4, 5, 6}))

	assert.Equal(t, [2]int{3, 2}, f.Shape())
	assert.Equal(t, []string{"a", "b"}, f.Columns())
	assert.Equal(t, []string{"0", "1", "2"}, f.Index())
	assert.False(t, f.HasIndex())

	err := f.AddColumn("c", []float64{1})
	require.Error(t, err)
	assert.True(t, IsLengthMismatch(err))

	err = f.AddColumn("a", []float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestFrame_ZeroValue(t *testing.T) {
	var f Frame
	assert.Equal(t, 0, f.NumRows())
	assert.False(t, f.HasColumn("a"))

	require.NoError(t, f.AddColumn("a", []float64{1, 2}))
	assert.Equal(t, [2]int{2, 1}, f.Shape())
	assert.Equal(t, []string{"0", "1"}, f.Index())

	err := f.AddColumn("b", []float64{1})
	assert.True(t, IsLengthMismatch(err))
}

func TestFrame_IndexFixesRowCount(t *testing.T) {
	f := NewFrame([]string{"x", "y"})
	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 0, f.NumColumns())
	assert.True(t, IsLengthMismatch(f.AddColumn("a", []float64{1})))
}

func TestFrame_ColumnIsCopy(t *testing.T) {
	values := []float64{1, 2}
	f := NewFrame([]string{"x", "y"})
	require.NoError(t, f.AddColumn("a", values))
	values[0] = 100

	s, ok := f.Column("a")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, s.Values)
	assert.Equal(t, []string{"x", "y"}, s.Index)

	s.Values[1] = 7
	s2, _ := f.Column("a")
	assert.Equal(t, 2.0, s2.Values[1])

	_, ok = f.Column("missing")
	assert.False(t, ok)
}

func TestFrame_RowsAndSlice(t *testing.T) {
	f, err := FrameFromColumns([]string{"a", "b", "c"}, []string{"x", "y"}, map[string][]float64{
		"x": {1, 2, 3},
		"y": {4, 5, 6},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"x": 2, "y": 5}, f.Row(1))
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, f.Values())

	part := f.Slice(1, 3)
	assert.Equal(t, []string{"b", "c"}, part.Index())
	col, _ := part.Column("y")
	assert.Equal(t, []float64{5, 6}, col.Values)
}

func TestFrame_SliceKeepsPositionalIndex(t *testing.T) {
	f := NewFrame(nil)
	require.NoError(t, f.AddColumn("x", []float64{1, 2, 3, 4}))
	assert.Equal(t, []string{"2", "3"}, f.Slice(2, 4).Index())
}

func TestFrame_WithIndex(t *testing.T) {
	f := NewFrame(nil)
	require.NoError(t, f.AddColumn("x", []float64{1, 2}))

	g, err := f.WithIndex([]string{"p", "q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, g.Index())
	assert.Equal(t, []string{"0", "1"}, f.Index())

	_, err = f.WithIndex([]string{"p"})
	assert.True(t, IsLengthMismatch(err))
}

func TestFrameFromRecords(t *testing.T) {
	f, err := FrameFromRecords([]string{"u1", "u2"}, []string{"a", "b"}, []map[string]float64{
		{"a": 1, "b": 2},
		{"a": 3},
	})
	require.NoError(t, err)
	col, _ := f.Column("b")
	assert.Equal(t, 2.0, col.Values[0])
	assert.True(t, math.IsNaN(col.Values[1]))

	_, err = FrameFromRecords([]string{"u1"}, []string{"a"}, []map[string]float64{{}, {}})
	assert.True(t, IsLengthMismatch(err))
}

func TestConcatFrames(t *testing.T) {
	a, _ := FrameFromColumns([]string{"r1"}, []string{"x"}, map[string][]float64{"x": {1}})
	b, _ := FrameFromColumns([]string{"r2", "r3"}, []string{"x"}, map[string][]float64{"x": {2, 3}})

	c, err := ConcatFrames(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, c.Index())
	col, _ := c.Column("x")
	assert.Equal(t, []float64{1, 2, 3}, col.Values)

	d, _ := FrameFromColumns(nil, []string{"y"}, map[string][]float64{"y": {1}})
	_, err = ConcatFrames(a, d)
	assert.True(t, IsInvalidInput(err))
}

func TestSeries(t *testing.T) {
	s, err := NewSeries("p", nil, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, s.Index)

	r, err := s.WithIndex([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Index)
	assert.Equal(t, []string{"0", "1"}, s.Index)

	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, err = s.WithIndex([]string{"a"})
	assert.True(t, IsLengthMismatch(err))

	all := ConcatSeries(r, &Series{Index: []string{"c"}, Values: []float64{3}})
	assert.Equal(t, "p", all.Name)
	assert.Equal(t, []string{"a", "b", "c"}, all.Index)
}

func TestNDArray(t *testing.T) {
	a := NewArray([]float64{1, 2, 3})
	assert.Equal(t, 1, a.Rank())
	assert.Equal(t, 3, a.Len())

	m, err := NewNDArray([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rank())

	_, err = NewNDArray([]int{2, 2}, []float64{1})
	assert.True(t, IsLengthMismatch(err))

	_, err = NewMatrix([][]float64{{1, 2}, {3}})
	assert.True(t, IsUnsupportedShape(err))

	mm, err := NewMatrix([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, mm.Shape)
}

func TestScoringData(t *testing.T) {
	s, _ := NewSeries("target", []string{"a", "b"}, []float64{1, 2})
	d, err := NewScoringData(s)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{PredictionColumn}, d.PredDF.Columns())
	assert.Equal(t, []string{"a", "b"}, d.PredDF.Index())

	s.Values[0] = 100
	assert.Equal(t, []float64{1, 2}, d.Values())

	var empty *ScoringData
	assert.Equal(t, 0, empty.Len())
}
