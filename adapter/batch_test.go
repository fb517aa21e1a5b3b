package adapter

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
)

// doublingModel 返回 2*x，并记录调用次数
type doublingModel struct {
	calls atomic.Int32
	nanAt string
}

func (m *doublingModel) Name() string { return "double" }

func (m *doublingModel) Predict(ctx context.Context, input *core.Frame) (any, error) {
	m.calls.Add(1)
	col, ok := input.Column("x")
	if !ok {
		return nil, fmt.Errorf("missing column x")
	}
	out := make([]float64, col.Len())
	for i, v := range col.Values {
		out[i] = 2 * v
		if input.Index()[i] == m.nanAt {
			out[i] = math.NaN()
		}
	}
	return core.NewArray(out), nil
}

func numberedInput(t *testing.T, n int) *core.Frame {
	t.Helper()
	ids := make([]string, n)
	xs := make([]float64, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("row-%d", i)
		xs[i] = float64(i)
	}
	f := core.NewFrame(ids)
	require.NoError(t, f.AddColumn("x", xs))
	return f
}

func TestPredictBatches(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		cfg       BatchConfig
		wantCalls int32
	}{
		{"no batching", 10, BatchConfig{}, 1},
		{"single batch larger than input", 10, BatchConfig{Size: 50}, 1},
		{"even batches", 10, BatchConfig{Size: 5, Concurrency: 2}, 2},
		{"uneven batches", 10, BatchConfig{Size: 3, Concurrency: 4}, 4},
		{"sequential", 7, BatchConfig{Size: 2}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &doublingModel{}
			input := numberedInput(t, tt.rows)

			data, err := PredictBatches(context.Background(), m, input, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, m.calls.Load())
			assert.Equal(t, input.Index(), data.Index())
			for i, v := range data.Values() {
				assert.Equal(t, float64(2*i), v)
			}
			assert.Equal(t, tt.rows, data.PredDF.NumRows())
		})
	}
}

func TestPredictBatches_FailingBatch(t *testing.T) {
	m := &doublingModel{nanAt: "row-7"}
	_, err := PredictBatches(context.Background(), m, numberedInput(t, 10), BatchConfig{Size: 3, Concurrency: 2})
	require.Error(t, err)
	assert.True(t, core.IsInvalidValue(err))
	assert.Contains(t, err.Error(), "batch 2")
}

func TestPredictBatches_NilInput(t *testing.T) {
	_, err := PredictBatches(context.Background(), &doublingModel{}, nil, BatchConfig{Size: 1})
	assert.True(t, core.IsInvalidInput(err))
}
