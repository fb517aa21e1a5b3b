package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// KServeProtocol 指定 KServe 协议版本。
const (
	KServeV1 = "v1"
	KServeV2 = "v2"
)

// KServeClient 是 KServe V1/V2 协议的客户端实现。
//
// KServe V1（基于 TensorFlow Serving REST）：
//   - Predict: POST /v1/models/{model_name}:predict
//   - 请求：{"instances": [...]}
//   - 响应：{"predictions": [...]}
//   - Model Ready: GET /v1/models/{model_name}
//
// KServe V2（Open Inference Protocol）：
//   - Infer: POST /v2/models/{model_name}[/versions/{version}]/infer
//   - 请求：{"inputs": [{"name": "input0", "shape": [batch, dim], "datatype": "FP64", "data": [...]}]}
//   - 响应：{"outputs": [{"name": "...", "shape": [...], "data": [...]}]}
//   - Server Ready: GET /v2/health/ready
//
// 输出还原：
//   - V1：predictions 经 DecodeOutput 还原
//   - V2 单个输出张量：按其 shape 还原为 *core.NDArray
//   - V2 多个输出张量：每个张量一列组成 *core.Frame（张量须为 [n] 或 [n, 1]）
type KServeClient struct {
	// Endpoint 服务根地址，如 "http://localhost:8000"
	Endpoint string
	// ModelName 模型名称
	ModelName string
	// ModelVersion 模型版本（可选，V2 路径中会带 /versions/{version}）
	ModelVersion string
	// Protocol 协议版本："v1" 或 "v2"，默认 "v2"
	Protocol string
	// InputFormat V1 协议下 instances 的编码方式，默认按行数组
	InputFormat InputFormat
	// V2InputName V2 协议下输入张量名称，默认 "input0"
	V2InputName string
	// V2OutputName V2 协议下只取该名称的输出张量；空则使用全部输出
	V2OutputName string
	// Timeout 请求超时
	Timeout time.Duration
	// Auth 认证配置
	Auth *AuthConfig
	// httpClient 自定义 HTTP 客户端（可选）
	httpClient *http.Client
}

// NewKServeClient 创建 KServe 客户端。endpoint 为根地址（如 http://localhost:8000），modelName 为模型名。
func NewKServeClient(endpoint, modelName string, opts ...KServeOption) *KServeClient {
	c := &KServeClient{
		Endpoint:    strings.TrimRight(endpoint, "/"),
		ModelName:   modelName,
		Protocol:    KServeV2,
		InputFormat: InputInstances,
		V2InputName: "input0",
		Timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// KServeOption 配置 KServe 客户端
type KServeOption func(*KServeClient)

// WithKServeVersion 设置模型版本（V2 路径会带 /versions/{version}）
func WithKServeVersion(version string) KServeOption {
	return func(c *KServeClient) {
		c.ModelVersion = version
	}
}

// WithKServeProtocol 设置协议："v1" 或 "v2"
func WithKServeProtocol(protocol string) KServeOption {
	return func(c *KServeClient) {
		if protocol == KServeV1 || protocol == KServeV2 {
			c.Protocol = protocol
		}
	}
}

// WithKServeInputFormat 设置 V1 协议下的输入编码方式
func WithKServeInputFormat(format InputFormat) KServeOption {
	return func(c *KServeClient) {
		if format != "" {
			c.InputFormat = format
		}
	}
}

// WithKServeV2InputName 设置 V2 协议下输入张量名称
func WithKServeV2InputName(name string) KServeOption {
	return func(c *KServeClient) {
		c.V2InputName = name
	}
}

// WithKServeV2OutputName 设置 V2 协议下只使用的输出张量名称
func WithKServeV2OutputName(name string) KServeOption {
	return func(c *KServeClient) {
		c.V2OutputName = name
	}
}

// WithKServeTimeout 设置超时
func WithKServeTimeout(timeout time.Duration) KServeOption {
	return func(c *KServeClient) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithKServeAuth 设置认证
func WithKServeAuth(auth *AuthConfig) KServeOption {
	return func(c *KServeClient) {
		c.Auth = auth
	}
}

// WithKServeHTTPClient 设置自定义 HTTP 客户端
func WithKServeHTTPClient(client *http.Client) KServeOption {
	return func(c *KServeClient) {
		c.httpClient = client
	}
}

func (c *KServeClient) Name() string { return c.ModelName }

// Predict 实现 core.Model。
func (c *KServeClient) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if err := requireRows("kserve", input); err != nil {
		return nil, err
	}
	if c.Protocol == KServeV1 {
		return c.predictV1(ctx, input)
	}
	return c.predictV2(ctx, input)
}

// predictV1 使用 V1 协议：POST /v1/models/{model_name}:predict，请求 instances，响应 predictions。
func (c *KServeClient) predictV1(ctx context.Context, input *core.Frame) (any, error) {
	url := fmt.Sprintf("%s/v1/models/%s:predict", c.Endpoint, c.ModelName)
	body := map[string]any{"instances": encodeInput(input, c.InputFormat)}

	bodyBytes, err := postJSON(ctx, c.httpClient, c.Auth, "kserve v1", url, body)
	if err != nil {
		return nil, err
	}
	v, err := unmarshalAny(bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("kserve v1 %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("kserve v1 unexpected response: %T", v)
	}
	predictions, ok := m["predictions"]
	if !ok {
		return nil, fmt.Errorf("kserve v1 response has no predictions")
	}
	return DecodeOutput(predictions)
}

// predictV2 使用 V2 协议：POST /v2/models/{model_name}/infer，请求 inputs 张量，响应 outputs。
func (c *KServeClient) predictV2(ctx context.Context, input *core.Frame) (any, error) {
	path := fmt.Sprintf("%s/v2/models/%s", c.Endpoint, c.ModelName)
	if c.ModelVersion != "" {
		path = fmt.Sprintf("%s/versions/%s", path, c.ModelVersion)
	}
	url := path + "/infer"

	// 将输入展平为行优先的 data
	rows, dim := input.NumRows(), input.NumColumns()
	data := make([]any, 0, rows*dim)
	for _, row := range encodeRows(input) {
		data = append(data, row...)
	}

	inputName := c.V2InputName
	if inputName == "" {
		inputName = "input0"
	}
	reqBody := map[string]any{
		"inputs": []map[string]any{
			{
				"name":     inputName,
				"shape":    []int{rows, dim},
				"datatype": "FP64",
				"data":     data,
			},
		},
	}

	bodyBytes, err := postJSON(ctx, c.httpClient, c.Auth, "kserve v2", url, reqBody)
	if err != nil {
		return nil, err
	}
	return c.parseV2Outputs(bodyBytes)
}

// v2InferResponse 对应 V2 推理响应
type v2InferResponse struct {
	ModelName    string           `json:"model_name"`
	ModelVersion string           `json:"model_version"`
	Outputs      []v2OutputTensor `json:"outputs"`
}

type v2OutputTensor struct {
	Name     string `json:"name"`
	Shape    []int  `json:"shape"`
	Datatype string `json:"datatype"`
	Data     []any  `json:"data"`
}

func (t *v2OutputTensor) toArray() (*core.NDArray, error) {
	values, ok := conv.ToNumericSlice(t.Data)
	if !ok {
		return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedType,
			"kserve v2 output %q has non-numeric data (datatype=%s)", t.Name, t.Datatype)
	}
	shape := t.Shape
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	return core.NewNDArray(shape, values)
}

func (c *KServeClient) parseV2Outputs(body []byte) (any, error) {
	var out v2InferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("kserve v2 parse response: %w", err)
	}
	if len(out.Outputs) == 0 {
		return nil, fmt.Errorf("kserve v2 empty outputs")
	}

	tensors := out.Outputs
	if c.V2OutputName != "" {
		tensors = nil
		for i := range out.Outputs {
			if out.Outputs[i].Name == c.V2OutputName {
				tensors = out.Outputs[i : i+1]
				break
			}
		}
		if tensors == nil {
			return nil, fmt.Errorf("kserve v2 output %q not found", c.V2OutputName)
		}
	}

	if len(tensors) == 1 {
		return tensors[0].toArray()
	}

	// 多个输出张量：每个张量作为一列
	names := make([]string, 0, len(tensors))
	cols := make(map[string][]float64, len(tensors))
	for i := range tensors {
		arr, err := tensors[i].toArray()
		if err != nil {
			return nil, err
		}
		if arr.Rank() > 2 || (arr.Rank() == 2 && arr.Shape[1] != 1) {
			return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedShape,
				"kserve v2 output %q of shape=%v can't be used as a column", tensors[i].Name, arr.Shape)
		}
		names = append(names, tensors[i].Name)
		cols[tensors[i].Name] = arr.Data
	}
	frame, err := core.FrameFromColumns(nil, names, cols)
	if err != nil {
		return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedShape, "kserve v2 outputs have different lengths: %v", err)
	}
	return frame, nil
}

// Health 实现 RemoteModel。V1 使用 GET /v1/models/{model_name}，V2 使用 GET /v2/health/ready。
func (c *KServeClient) Health(ctx context.Context) error {
	var url string
	if c.Protocol == KServeV1 {
		url = fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
	} else {
		url = fmt.Sprintf("%s/v2/health/ready", c.Endpoint)
	}
	return checkHealth(ctx, c.httpClient, c.Auth, "kserve", url)
}

// Close 实现 RemoteModel。
func (c *KServeClient) Close() error {
	return nil
}

var _ RemoteModel = (*KServeClient)(nil)
