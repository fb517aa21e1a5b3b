package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/adapter"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
	"github.com/rushteam/scorekit/pkg/dsl"
	"github.com/rushteam/scorekit/pkg/logx"
	"github.com/rushteam/scorekit/store"
)

func housesFrame(t *testing.T) *core.Frame {
	t.Helper()
	f, err := core.FrameFromColumns([]string{"h1", "h2", "h3"}, []string{"area", "rooms"}, map[string][]float64{
		"area":  {50, 80, 120},
		"rooms": {2, 3, 4},
	})
	require.NoError(t, err)
	return f
}

// doubleArea 预测值为 area * 2
func doubleArea() *core.ModelFunc {
	return &core.ModelFunc{
		ModelName: "double-area",
		Fn: func(ctx context.Context, input *core.Frame) (any, error) {
			col, _ := input.Column("area")
			out := make([]float64, len(col.Values))
			for i, v := range col.Values {
				out[i] = v * 2
			}
			return core.NewArray(out), nil
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	var buf bytes.Buffer
	p := &Pipeline{
		Name:   "houses",
		Source: &StaticSource{Frame: housesFrame(t)},
		Model:  doubleArea(),
		Store:  mem,
		Batch:  adapter.BatchConfig{Size: 1, Concurrency: 2},
		Logger: logx.NewJSONLogger(&buf, logx.ParseLevel("info")),
	}

	data, err := p.Run(ctx, []string{"h3", "h1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h3", "h1"}, data.Index())
	assert.Equal(t, []float64{240, 100}, data.Values())

	saved, err := mem.Load(ctx, "double-area", []string{"h1", "h2", "h3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"h1": 100, "h3": 240}, saved)
	assert.Contains(t, buf.String(), `"msg":"pipeline completed"`)
}

func TestPipeline_Guard(t *testing.T) {
	guard, err := dsl.NewGuard("prediction < 200.0")
	require.NoError(t, err)
	p := &Pipeline{
		Model:   doubleArea(),
		Options: []adapter.Option{adapter.WithGuard(guard)},
	}

	_, err = p.RunFrame(context.Background(), housesFrame(t))
	require.Error(t, err)
	assert.True(t, core.IsInvalidValue(err))
	assert.Contains(t, err.Error(), "h3")
}

func TestPipeline_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := (&Pipeline{Model: doubleArea()}).Run(ctx, []string{"h1"})
	assert.True(t, core.IsInvalidInput(err))

	_, err = (&Pipeline{}).RunFrame(ctx, housesFrame(t))
	assert.True(t, core.IsInvalidInput(err))

	p := &Pipeline{Source: &StaticSource{Frame: housesFrame(t)}, Model: doubleArea()}
	_, err = p.Run(ctx, []string{"h9"})
	assert.True(t, core.IsNotFound(err))

	cause := errors.New("model down")
	p = &Pipeline{Model: &core.ModelFunc{Fn: func(ctx context.Context, input *core.Frame) (any, error) {
		return nil, cause
	}}}
	_, err = p.RunFrame(ctx, housesFrame(t))
	assert.ErrorIs(t, err, cause)
}

func TestPipeline_Processors(t *testing.T) {
	in, err := core.FrameFromColumns([]string{"h1", "h2"}, []string{"area"}, map[string][]float64{
		"area": {math.NaN(), 40},
	})
	require.NoError(t, err)
	p := &Pipeline{
		Model:      doubleArea(),
		Processors: []feature.Processor{feature.NewMissingValueHandler(feature.StrategyConstant, 10)},
	}

	data, err := p.RunFrame(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 80}, data.Values())

	// 未填充时 NaN 传播到预测值，被 adapter 拒绝
	p.Processors = nil
	_, err = p.RunFrame(context.Background(), in)
	assert.True(t, core.IsInvalidValue(err))

	p.Processors = []feature.Processor{feature.NewFeatureSelector([]string{"rooms"})}
	_, err = p.RunFrame(context.Background(), in)
	assert.True(t, core.IsNotFound(err))
}

type closingStore struct {
	*store.MemoryStore
	closed bool
}

func (c *closingStore) Close() error {
	c.closed = true
	return nil
}

func TestPipeline_Close(t *testing.T) {
	s := &closingStore{MemoryStore: store.NewMemoryStore()}
	p := &Pipeline{Model: doubleArea(), Store: s}
	require.NoError(t, p.Close())
	assert.True(t, s.closed)
}

func TestStaticSource_KeepsColumns(t *testing.T) {
	src := &StaticSource{Frame: housesFrame(t)}
	f, err := src.Fetch(context.Background(), []string{"h2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"area", "rooms"}, f.Columns())
	assert.Equal(t, map[string]float64{"area": 80, "rooms": 3}, f.Row(0))

	_, err = (&StaticSource{}).Fetch(context.Background(), []string{"h1"})
	assert.True(t, core.IsInvalidInput(err))
}
