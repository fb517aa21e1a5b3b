package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/scorekit/core"
)

// MLflowClient 是 MLflow scoring server（`mlflow models serve` / pyfunc 容器）的客户端实现。
//
// REST API 格式：
//   - 推理端点：POST /invocations
//   - 请求体：{"dataframe_split": {"index": [...], "columns": [...], "data": [[...], ...]}}
//   - 响应：{"predictions": X}（MLflow 2.x）或直接返回 X（1.x）
//     X 可能是数值列表、二维列表、records 形式的 DataFrame 或 columns 形式的 DataFrame
//   - 健康检查：GET /ping
//
// 使用场景：MLflow 注册模型、Databricks Model Serving、兼容 MLflow 协议的自建服务。
type MLflowClient struct {
	// Endpoint 服务根地址，如 "http://localhost:5000"
	Endpoint string
	// ModelName 模型名称（仅用于日志与错误信息）
	ModelName string
	// Timeout 请求超时
	Timeout time.Duration
	// Auth 认证配置
	Auth *AuthConfig
	// httpClient 自定义 HTTP 客户端（可选）
	httpClient *http.Client
}

// MLflowOption 配置 MLflow 客户端
type MLflowOption func(*MLflowClient)

// WithMLflowTimeout 设置超时
func WithMLflowTimeout(timeout time.Duration) MLflowOption {
	return func(c *MLflowClient) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMLflowAuth 设置认证
func WithMLflowAuth(auth *AuthConfig) MLflowOption {
	return func(c *MLflowClient) {
		c.Auth = auth
	}
}

// WithMLflowHTTPClient 设置自定义 HTTP 客户端
func WithMLflowHTTPClient(client *http.Client) MLflowOption {
	return func(c *MLflowClient) {
		c.httpClient = client
	}
}

// NewMLflowClient 创建 MLflow 客户端
func NewMLflowClient(endpoint, modelName string, opts ...MLflowOption) *MLflowClient {
	c := &MLflowClient{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		ModelName: modelName,
		Timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

func (c *MLflowClient) Name() string {
	if c.ModelName == "" {
		return "mlflow"
	}
	return c.ModelName
}

// Predict 实现 core.Model。返回值为 DecodeOutput 还原后的原始输出。
func (c *MLflowClient) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if err := requireRows("mlflow", input); err != nil {
		return nil, err
	}
	body := map[string]any{
		"dataframe_split": map[string]any{
			"index":   input.Index(),
			"columns": input.Columns(),
			"data":    encodeRows(input),
		},
	}
	bodyBytes, err := postJSON(ctx, c.httpClient, c.Auth, "mlflow", c.Endpoint+"/invocations", body)
	if err != nil {
		return nil, err
	}

	v, err := unmarshalAny(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("mlflow %w", err)
	}
	// MLflow 2.x 把结果包在 predictions 字段中
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["predictions"]; ok && len(m) == 1 {
			v = inner
		}
	}
	return DecodeOutput(v)
}

// Health 实现 RemoteModel，使用 GET /ping。
func (c *MLflowClient) Health(ctx context.Context) error {
	return checkHealth(ctx, c.httpClient, c.Auth, "mlflow", c.Endpoint+"/ping")
}

// Close 实现 RemoteModel。
func (c *MLflowClient) Close() error {
	return nil
}

var _ RemoteModel = (*MLflowClient)(nil)
