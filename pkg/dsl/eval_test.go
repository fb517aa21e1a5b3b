package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuard_Empty(t *testing.T) {
	g, err := NewGuard("")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestNewGuard_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax", "prediction >"},
		{"unknown variable", "score > 0.0"},
		{"non bool", "prediction + 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGuard(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		id       string
		pred     float64
		features map[string]float64
		want     bool
	}{
		{"in range", "prediction >= 0.0 && prediction < 100.0", "a", 42, nil, true},
		{"negative", "prediction >= 0.0", "a", -1, nil, false},
		{"by id", `id.startsWith("test_") || prediction > 0.0`, "test_1", -5, nil, true},
		{"feature bound", `"area" in features && prediction <= features["area"] * 2.0`, "a", 10, map[string]float64{"area": 6}, true},
		{"feature missing", `"area" in features`, "a", 10, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGuard(tt.expr)
			require.NoError(t, err)
			got, err := g.Check(tt.id, tt.pred, tt.features)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuard_EvalError(t *testing.T) {
	g, err := NewGuard(`features["missing"] > 0.0`)
	require.NoError(t, err)
	_, err = g.Check("a", 1, map[string]float64{})
	assert.Error(t, err)
}
