package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/scorekit/core"
)

// TFServingClient 是 TensorFlow Serving REST API 的客户端实现。
//
// REST API 格式：
//   - 推理端点：POST /v1/models/{model_name}[/versions/{version}]:predict
//   - 请求：{"signature_name": "...", "instances": [...]}
//   - 响应：行格式 {"predictions": [...]} 或列格式 {"outputs": ...}
//   - 健康检查：GET /v1/models/{model_name}
//
// 多输出签名在行格式下返回对象列表，还原为 *core.Frame（每个输出一列）。
type TFServingClient struct {
	// Endpoint 服务端点，如 "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// SignatureName 签名名称（可选，默认为 "serving_default"）
	SignatureName string

	// InputFormat instances 的编码方式
	InputFormat InputFormat

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	// httpClient HTTP 客户端
	httpClient *http.Client
}

// NewTFServingClient 创建一个新的 TF Serving 客户端。
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      strings.TrimRight(endpoint, "/"),
		ModelName:     modelName,
		SignatureName: "serving_default",
		InputFormat:   InputInstances,
		Timeout:       30 * time.Second,
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

// TFServingOption TF Serving 客户端配置选项
type TFServingOption func(*TFServingClient)

// WithTFServingVersion 设置模型版本
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature 设置签名名称
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingInputFormat 设置输入编码方式
func WithTFServingInputFormat(format InputFormat) TFServingOption {
	return func(c *TFServingClient) {
		if format != "" {
			c.InputFormat = format
		}
	}
}

// WithTFServingTimeout 设置超时时间
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTFServingAuth 设置认证信息
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// WithTFServingHTTPClient 设置自定义 HTTP 客户端
func WithTFServingHTTPClient(client *http.Client) TFServingOption {
	return func(c *TFServingClient) {
		c.httpClient = client
	}
}

func (c *TFServingClient) Name() string { return c.ModelName }

func (c *TFServingClient) modelURL() string {
	if c.ModelVersion != "" {
		return fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
}

// Predict 实现 core.Model
func (c *TFServingClient) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if err := requireRows("tf serving", input); err != nil {
		return nil, err
	}

	body := map[string]any{
		"instances": encodeInput(input, c.InputFormat),
	}
	if c.SignatureName != "" {
		body["signature_name"] = c.SignatureName
	}

	bodyBytes, err := postJSON(ctx, c.httpClient, c.Auth, "tf serving", c.modelURL()+":predict", body)
	if err != nil {
		return nil, err
	}
	v, err := unmarshalAny(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("tf serving %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tf serving unexpected response: %T", v)
	}
	if predictions, ok := m["predictions"]; ok {
		return DecodeOutput(predictions)
	}
	if outputs, ok := m["outputs"]; ok {
		return DecodeOutput(outputs)
	}
	return nil, fmt.Errorf("tf serving response has neither predictions nor outputs")
}

// Health 健康检查
func (c *TFServingClient) Health(ctx context.Context) error {
	return checkHealth(ctx, c.httpClient, c.Auth, "tf serving", c.modelURL())
}

// Close 关闭连接
func (c *TFServingClient) Close() error {
	// HTTP 客户端不需要显式关闭
	return nil
}

// 确保 TFServingClient 实现了 RemoteModel 接口
var _ RemoteModel = (*TFServingClient)(nil)
