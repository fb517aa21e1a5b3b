package model

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/adapter"
	"github.com/rushteam/scorekit/core"
)

func houses(t *testing.T) *core.Frame {
	t.Helper()
	f, err := core.FrameFromColumns([]string{"a", "b"}, []string{"area", "rooms"}, map[string][]float64{
		"area":  {50, 100},
		"rooms": {2, 4},
	})
	require.NoError(t, err)
	return f
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLinearModel(t *testing.T) {
	path := writeJSON(t, map[string]any{
		"name":    "price",
		"bias":    10,
		"weights": map[string]float64{"area": 2, "rooms": 5, "garage": 100},
	})
	m, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Equal(t, "price", m.Name())

	data, err := adapter.PredictRegression(context.Background(), m, houses(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{120, 230}, data.Values())
	assert.Equal(t, []string{"a", "b"}, data.Index())
}

func TestLoadLinearModel_Errors(t *testing.T) {
	_, err := LoadLinearModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadLinearModel(path)
	assert.Error(t, err)
}

func TestMLPModel(t *testing.T) {
	// hidden = relu(area - 60), out = 2*hidden + rooms... 第二层只接 hidden
	m := &MLPModel{
		Inputs:  []string{"area", "rooms"},
		Weights: [][][]float64{{{1, 0}}, {{2}}},
		Biases:  [][]float64{{-60}, {1}},
	}
	out, err := m.Predict(context.Background(), houses(t))
	require.NoError(t, err)
	arr, ok := out.(*core.NDArray)
	require.True(t, ok)
	// row a: relu(50-60)=0 -> 1 ; row b: relu(100-60)=40 -> 81
	assert.Equal(t, []float64{1, 81}, arr.Data)
}

func TestMLPModel_MultiOutput(t *testing.T) {
	base := MLPModel{
		Inputs:  []string{"area"},
		Weights: [][][]float64{{{0.01}, {1}}},
		Biases:  [][]float64{{0, 0}},
	}

	unnamed := base
	_, err := adapter.PredictRegression(context.Background(), &unnamed, houses(t))
	require.Error(t, err)
	assert.True(t, core.IsUnsupportedShape(err))

	named := base
	named.OutputNames = []string{"predictions", "target"}
	data, err := adapter.PredictRegression(context.Background(), &named, houses(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 100}, data.Values())
	assert.Equal(t, "target", data.Preds.Name)
}

func TestMLPModel_Validate(t *testing.T) {
	tests := []struct {
		name string
		m    MLPModel
	}{
		{"no layers", MLPModel{Inputs: []string{"a"}}},
		{"bias layers", MLPModel{Inputs: []string{"a"}, Weights: [][][]float64{{{1}}}}},
		{"input width", MLPModel{Inputs: []string{"a", "b"}, Weights: [][][]float64{{{1}}}, Biases: [][]float64{{0}}}},
		{"bias width", MLPModel{Inputs: []string{"a"}, Weights: [][][]float64{{{1}}}, Biases: [][]float64{{0, 0}}}},
		{"output names", MLPModel{Inputs: []string{"a"}, Weights: [][][]float64{{{1}}}, Biases: [][]float64{{0}}, OutputNames: []string{"x", "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.m.Validate())
		})
	}
}

func TestLoadMLPModel(t *testing.T) {
	path := writeJSON(t, map[string]any{
		"name":    "mlp-price",
		"inputs":  []string{"rooms"},
		"weights": [][][]float64{{{3}}},
		"biases":  [][]float64{{1}},
	})
	m, err := LoadMLPModel(path)
	require.NoError(t, err)
	assert.Equal(t, "mlp-price", m.Name())

	_, err = m.Predict(context.Background(), core.NewFrame(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rooms" not found`)
}

func TestRPCModel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = io.WriteString(w, `{"scores": [0.5, 0.7]}`)
	}))
	defer srv.Close()

	m := NewRPCModel("xgb", srv.URL, 0)
	data, err := adapter.PredictRegression(context.Background(), m, houses(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.7}, data.Values())
	assert.Len(t, got["features_list"], 2)
}

func TestRPCModel_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRPCModel("xgb", srv.URL, 0).Predict(context.Background(), houses(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}
