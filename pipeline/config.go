package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是打分流程的配置结构（支持 YAML/JSON）。
//
//	pipeline:
//	  name: house-price
//	model:
//	  type: mlflow
//	  config: {endpoint: "http://localhost:5000"}
//	source:
//	  type: feast
//	  config: {endpoint: "localhost:6565", project: realty, entity_key: house_id, features: [...]}
//	store:
//	  type: redis
//	  config: {addr: "localhost:6379"}
//	  ttl: 3600
//	features:
//	  - type: missing
//	    config: {strategy: mean}
//	guard: "prediction >= 0.0"
//	batch: {size: 512, concurrency: 4}
//	log: {format: json, level: info}
type Config struct {
	Pipeline struct {
		Name string `yaml:"name" json:"name"`
	} `yaml:"pipeline" json:"pipeline"`

	Model  ComponentConfig  `yaml:"model" json:"model"`
	Source *ComponentConfig `yaml:"source,omitempty" json:"source,omitempty"`
	Store  *ComponentConfig `yaml:"store,omitempty" json:"store,omitempty"`

	// Features 特征预处理（按顺序执行）
	Features []ComponentConfig `yaml:"features,omitempty" json:"features,omitempty"`

	// Guard CEL 逐行校验表达式（可选）
	Guard string `yaml:"guard,omitempty" json:"guard,omitempty"`

	Batch BatchSection `yaml:"batch" json:"batch"`
	Log   LogSection   `yaml:"log" json:"log"`
}

// ComponentConfig 是单个组件（模型/来源/存储）的配置。
type ComponentConfig struct {
	Type   string         `yaml:"type" json:"type"`     // mlflow / kserve / linear / redis / feast 等
	Config map[string]any `yaml:"config" json:"config"` // 组件特定配置
	TTL    int            `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// BatchSection 分批预测配置
type BatchSection struct {
	Size        int `yaml:"size" json:"size"`
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// LogSection 日志配置
type LogSection struct {
	Format string `yaml:"format" json:"format"` // json / text / none
	Level  string `yaml:"level" json:"level"`
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML 解析 YAML 配置。
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseJSON(data)
}

// ParseJSON 解析 JSON 配置。
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Model.Type == "" {
		return fmt.Errorf("model.type is required")
	}
	if c.Source != nil && c.Source.Type == "" {
		return fmt.Errorf("source.type is required")
	}
	if c.Store != nil && c.Store.Type == "" {
		return fmt.Errorf("store.type is required")
	}
	for i, f := range c.Features {
		if f.Type == "" {
			return fmt.Errorf("features[%d].type is required", i)
		}
	}
	if c.Batch.Size < 0 || c.Batch.Concurrency < 0 {
		return fmt.Errorf("batch size and concurrency must not be negative")
	}
	return nil
}
