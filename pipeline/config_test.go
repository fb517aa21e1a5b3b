package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
pipeline:
  name: house-price
model:
  type: linear
  config:
    bias: 1
    weights: {area: 0.5}
store:
  type: memory
  ttl: 60
guard: "prediction >= 0.0"
batch:
  size: 128
  concurrency: 4
log:
  format: json
  level: debug
`

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "house-price", cfg.Pipeline.Name)
	assert.Equal(t, "linear", cfg.Model.Type)
	assert.Equal(t, 1, cfg.Model.Config["bias"])
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 60, cfg.Store.TTL)
	assert.Nil(t, cfg.Source)
	assert.Equal(t, "prediction >= 0.0", cfg.Guard)
	assert.Equal(t, BatchSection{Size: 128, Concurrency: 4}, cfg.Batch)
	assert.Equal(t, LogSection{Format: "json", Level: "debug"}, cfg.Log)
}

func TestLoadFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	data := `{"model": {"type": "mlflow", "config": {"endpoint": "http://localhost:5000"}}, "batch": {"size": 10}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "mlflow", cfg.Model.Type)
	assert.Equal(t, "http://localhost:5000", cfg.Model.Config["endpoint"])
	assert.Equal(t, 10, cfg.Batch.Size)
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no model", `batch: {size: 1}`},
		{"source type", "model: {type: linear}\nsource: {config: {}}"},
		{"store type", "model: {type: linear}\nstore: {ttl: 1}"},
		{"negative batch", "model: {type: linear}\nbatch: {size: -1}"},
		{"syntax", "model: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
