package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rushteam/scorekit/core"
)

// TorchServeClient 是 TorchServe 的客户端实现。
//
// REST API 格式：
//   - 推理端点：POST /predictions/{model_name}[/{version}]
//   - 请求体：{"instances": [...]}（由模型 Handler 解析）
//   - 响应：直接返回预测结果（格式由模型 Handler 决定），经 DecodeOutput 还原
//   - 健康检查：GET /ping
type TorchServeClient struct {
	// Endpoint 服务端点，如 "http://localhost:8080"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// InputFormat instances 的编码方式
	InputFormat InputFormat

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	// httpClient HTTP 客户端
	httpClient *http.Client
}

// NewTorchServeClient 创建一个新的 TorchServe 客户端。
func NewTorchServeClient(endpoint, modelName string, opts ...TorchServeOption) *TorchServeClient {
	client := &TorchServeClient{
		Endpoint:    strings.TrimRight(endpoint, "/"),
		ModelName:   modelName,
		InputFormat: InputInstances,
		Timeout:     30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Timeout: client.Timeout,
		}
	}
	return client
}

// TorchServeOption TorchServe 客户端配置选项
type TorchServeOption func(*TorchServeClient)

// WithTorchServeVersion 设置模型版本
func WithTorchServeVersion(version string) TorchServeOption {
	return func(c *TorchServeClient) {
		c.ModelVersion = version
	}
}

// WithTorchServeInputFormat 设置输入编码方式
func WithTorchServeInputFormat(format InputFormat) TorchServeOption {
	return func(c *TorchServeClient) {
		if format != "" {
			c.InputFormat = format
		}
	}
}

// WithTorchServeTimeout 设置超时时间
func WithTorchServeTimeout(timeout time.Duration) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTorchServeAuth 设置认证信息
func WithTorchServeAuth(auth *AuthConfig) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Auth = auth
	}
}

// WithTorchServeHTTPClient 设置自定义 HTTP 客户端
func WithTorchServeHTTPClient(httpClient *http.Client) TorchServeOption {
	return func(c *TorchServeClient) {
		c.httpClient = httpClient
	}
}

func (c *TorchServeClient) Name() string { return c.ModelName }

// Predict 实现 core.Model
func (c *TorchServeClient) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if err := requireRows("torchserve", input); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/predictions/%s", c.Endpoint, url.PathEscape(c.ModelName))
	if c.ModelVersion != "" {
		u = fmt.Sprintf("%s/%s", u, url.PathEscape(c.ModelVersion))
	}
	body := map[string]any{"instances": encodeInput(input, c.InputFormat)}

	bodyBytes, err := postJSON(ctx, c.httpClient, c.Auth, "torchserve", u, body)
	if err != nil {
		return nil, err
	}
	out, err := DecodeOutputJSON(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("torchserve %w", err)
	}
	return out, nil
}

// Health 健康检查，TorchServe 健康检查端点：/ping
func (c *TorchServeClient) Health(ctx context.Context) error {
	return checkHealth(ctx, c.httpClient, c.Auth, "torchserve", c.Endpoint+"/ping")
}

// Close 关闭连接
func (c *TorchServeClient) Close() error {
	return nil
}

var _ RemoteModel = (*TorchServeClient)(nil)
