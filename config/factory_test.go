package config

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/service"
	"github.com/rushteam/scorekit/store"
)

func input(t *testing.T) *core.Frame {
	t.Helper()
	f, err := core.FrameFromColumns([]string{"h1", "h2"}, []string{"area"}, map[string][]float64{
		"area": {50, 100},
	})
	require.NoError(t, err)
	return f
}

func TestBuild_LinearMemory(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: house-price
model:
  type: linear
  config:
    name: price
    bias: 1
    weights: {area: 2}
store:
  type: memory
  ttl: 60
guard: "prediction > 0.0"
batch: {size: 1, concurrency: 2}
log: {format: none}
`))
	require.NoError(t, err)

	p, err := BuildWithRegistry(DefaultRegistry(), cfg, io.Discard)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "house-price", p.Name)
	assert.IsType(t, &model.LinearModel{}, p.Model)
	assert.IsType(t, &store.MemoryStore{}, p.Store)
	assert.Equal(t, 60, p.TTL)
	assert.Len(t, p.Options, 1)
	assert.Equal(t, 1, p.Batch.Size)

	data, err := p.RunFrame(context.Background(), input(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 201}, data.Values())

	saved, err := p.Store.Load(context.Background(), "price", []string{"h1", "h2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"h1": 101, "h2": 201}, saved)
}

func TestBuild_MLflowSQLite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"predictions": [{"predictions": 0.1, "target": 7}, {"predictions": 0.2, "target": 8}]}`)
	}))
	defer srv.Close()

	cfg := &pipeline.Config{
		Model: pipeline.ComponentConfig{Type: "mlflow", Config: map[string]any{
			"endpoint":   srv.URL,
			"model_name": "fastai-price",
			"timeout":    2,
		}},
		Store: &pipeline.ComponentConfig{Type: "sqlite", Config: map[string]any{
			"dsn": filepath.Join(t.TempDir(), "scores.db"),
		}},
	}
	var logs bytes.Buffer
	cfg.Log.Format = "json"
	p, err := BuildWithRegistry(DefaultRegistry(), cfg, &logs)
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &service.MLflowClient{}, p.Model)
	assert.Equal(t, "sqlite", p.Store.Name())

	data, err := p.RunFrame(context.Background(), input(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8}, data.Values())
	assert.Equal(t, []string{"h1", "h2"}, data.Index())
	assert.Contains(t, logs.String(), "pipeline completed")
}

func TestBuildFromYAML(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "mlp.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{"name": "mlp", "inputs": ["area"], "weights": [[[1]]], "biases": [[0.5]]}`), 0o644))
	cfgPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model:\n  type: mlp\n  config:\n    path: "+modelPath+"\nlog: {format: none}\n"), 0o644))

	p, err := BuildFromYAML(cfgPath)
	require.NoError(t, err)
	data, err := p.RunFrame(context.Background(), input(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{50.5, 100.5}, data.Values())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *pipeline.Config
		code string
	}{
		{
			name: "unknown model",
			cfg:  &pipeline.Config{Model: pipeline.ComponentConfig{Type: "onnx"}},
			code: core.ErrorCodeNotSupported,
		},
		{
			name: "unknown store",
			cfg: &pipeline.Config{
				Model: pipeline.ComponentConfig{Type: "linear", Config: map[string]any{"weights": map[string]any{"a": 1}}},
				Store: &pipeline.ComponentConfig{Type: "mongo"},
			},
			code: core.ErrorCodeNotSupported,
		},
		{
			name: "linear without weights",
			cfg:  &pipeline.Config{Model: pipeline.ComponentConfig{Type: "linear"}},
		},
		{
			name: "rpc without endpoint",
			cfg:  &pipeline.Config{Model: pipeline.ComponentConfig{Type: "rpc"}},
		},
		{
			name: "kserve without model name",
			cfg:  &pipeline.Config{Model: pipeline.ComponentConfig{Type: "kserve", Config: map[string]any{"endpoint": "http://localhost:8000"}}},
		},
		{
			name: "feast without features",
			cfg: &pipeline.Config{
				Model:  pipeline.ComponentConfig{Type: "rpc", Config: map[string]any{"endpoint": "http://localhost:8080"}},
				Source: &pipeline.ComponentConfig{Type: "feast", Config: map[string]any{"entity_key": "house_id"}},
			},
		},
		{
			name: "bad guard",
			cfg: &pipeline.Config{
				Model: pipeline.ComponentConfig{Type: "linear", Config: map[string]any{"weights": map[string]any{"a": 1}}},
				Guard: "prediction +",
			},
		},
		{
			name: "nil",
			cfg:  nil,
			code: core.ErrorCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildWithRegistry(DefaultRegistry(), tt.cfg, io.Discard)
			require.Error(t, err)
			if tt.code != "" {
				de := core.GetDomainError(err)
				require.NotNil(t, de)
				assert.Equal(t, tt.code, de.Code)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.ModelTypes())

	reg.RegisterModel("const", func(cfg map[string]any) (core.Model, error) {
		return &core.ModelFunc{ModelName: "const", Fn: func(ctx context.Context, in *core.Frame) (any, error) {
			out := make([]float64, in.NumRows())
			return out, nil
		}}, nil
	})
	reg.RegisterModel("", nil)
	assert.Equal(t, []string{"const"}, reg.ModelTypes())

	m, err := reg.BuildModel("const", nil)
	require.NoError(t, err)
	assert.Equal(t, "const", m.Name())

	_, err = reg.BuildStore("memory", nil)
	assert.True(t, core.IsNotSupported(err))
	_, err = reg.BuildSource("feast", nil)
	assert.True(t, core.IsNotSupported(err))
}

func TestDefaultRegistry_Types(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"kserve", "linear", "mlflow", "mlp", "rpc", "tf_serving", "torch_serve"}, reg.ModelTypes())
	assert.Equal(t, []string{"kafka", "memory", "redis", "sqlite"}, reg.StoreTypes())
	assert.Equal(t, []string{"feast"}, reg.SourceTypes())
	assert.Equal(t, []string{"log1p", "minmax", "missing", "select", "zscore"}, reg.ProcessorTypes())
}

func TestValidate(t *testing.T) {
	cfg := &pipeline.Config{
		Model:  pipeline.ComponentConfig{Type: "onnx"},
		Source: &pipeline.ComponentConfig{Type: "csv"},
		Store:  &pipeline.ComponentConfig{Type: "memory"},
	}
	err := Validate(DefaultRegistry(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported model type "onnx"`)
	assert.Contains(t, err.Error(), `unsupported source type "csv"`)
	assert.NotContains(t, err.Error(), "store")

	cfg.Model.Type = "linear"
	cfg.Source = nil
	assert.NoError(t, Validate(DefaultRegistry(), cfg))
	assert.NoError(t, Validate(DefaultRegistry(), nil))
}

func TestBuild_Features(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
model:
  type: linear
  config:
    weights: {area: 1, rooms: 1}
features:
  - type: missing
    config: {strategy: constant, default: 0, defaults: {rooms: 2}, required: [rooms]}
  - type: minmax
    config: {min: {area: 0}, max: {area: 100}}
  - type: select
    config: {exclude: [garage]}
log: {format: none}
`))
	require.NoError(t, err)

	p, err := BuildWithRegistry(DefaultRegistry(), cfg, io.Discard)
	require.NoError(t, err)
	require.Len(t, p.Processors, 3)

	data, err := p.RunFrame(context.Background(), input(t))
	require.NoError(t, err)
	// area 归一化到 [0, 1]，rooms 补齐为 2
	assert.Equal(t, []float64{2.5, 3}, data.Values())

	cfg.Features = append(cfg.Features, pipeline.ComponentConfig{Type: "pca"})
	_, err = BuildWithRegistry(DefaultRegistry(), cfg, io.Discard)
	assert.True(t, core.IsNotSupported(err))
	assert.Error(t, Validate(DefaultRegistry(), cfg))
}

func TestBuildProcessors_Errors(t *testing.T) {
	for _, typeName := range []string{"zscore", "minmax", "select"} {
		_, err := DefaultRegistry().BuildProcessor(typeName, map[string]any{})
		assert.Error(t, err, typeName)
	}
	p, err := DefaultRegistry().BuildProcessor("log1p", nil)
	require.NoError(t, err)
	assert.Equal(t, "log1p", p.Name())
}

func TestBuild_KafkaStore(t *testing.T) {
	s, err := DefaultRegistry().BuildStore("kafka", map[string]any{
		"brokers":     []any{"localhost:9092"},
		"topic":       "house-prices",
		"compression": "zstd",
		"acks":        -1,
	})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &store.KafkaStore{}, s)

	_, err = DefaultRegistry().BuildStore("kafka", map[string]any{"brokers": "localhost:9092"})
	assert.True(t, core.IsInvalidInput(err))
}
