package feast

import (
	"context"
	"fmt"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// DefaultGrpcPort Feast Serving 默认 gRPC 端口
const DefaultGrpcPort = 6565

// GrpcClient 是基于官方 Feast Go SDK 的 gRPC 客户端实现。
type GrpcClient struct {
	client   *feastsdk.GrpcClient
	Project  string
	Endpoint string
	Timeout  time.Duration
}

// NewGrpcClient 创建一个基于官方 SDK 的 Feast gRPC 客户端。
//   - host: Feast Serving 主机地址，例如 "localhost"
//   - port: gRPC 端口，0 表示 6565
//   - project: 项目名称
func NewGrpcClient(host string, port int, project string, opts ...ClientOption) (*GrpcClient, error) {
	if port == 0 {
		port = DefaultGrpcPort
	}

	config := &ClientConfig{
		Endpoint: fmt.Sprintf("%s:%d", host, port),
		Project:  project,
		Timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(config)
	}

	var (
		client *feastsdk.GrpcClient
		err    error
	)
	if config.Auth != nil && config.Auth.Type == "static" && config.Auth.Token != "" {
		security := feastsdk.SecurityConfig{
			EnableTLS:  config.Auth.TLS,
			Credential: feastsdk.NewStaticCredential(config.Auth.Token),
		}
		client, err = feastsdk.NewSecureGrpcClient(host, port, security)
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, fmt.Errorf("feast: connect %s: %w", config.Endpoint, err)
	}

	return &GrpcClient{
		client:   client,
		Project:  config.Project,
		Endpoint: config.Endpoint,
		Timeout:  config.Timeout,
	}, nil
}

// GetOnlineFeatures 获取在线特征（实现 Client 接口）
func (c *GrpcClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if c.client == nil {
		return nil, fmt.Errorf("feast: client is closed")
	}
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("feast: features are required")
	}
	if len(req.EntityRows) == 0 {
		return nil, fmt.Errorf("feast: entity rows are required")
	}
	project := req.Project
	if project == "" {
		project = c.Project
	}
	if project == "" {
		return nil, fmt.Errorf("feast: project is required")
	}

	entityRows := make([]feastsdk.Row, len(req.EntityRows))
	for i, row := range req.EntityRows {
		entityRow := make(feastsdk.Row, len(row))
		for k, v := range row {
			entityRow[k] = toSDKValue(v)
		}
		entityRows[i] = entityRow
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	sdkResp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: req.Features,
		Entities: entityRows,
		Project:  project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := sdkResp.Rows()
	if len(rows) != len(req.EntityRows) {
		return nil, fmt.Errorf("feast: response has %d rows, want %d", len(rows), len(req.EntityRows))
	}

	vectors := make([]FeatureVector, len(rows))
	for i, row := range rows {
		values := make(map[string]float64, len(req.Features))
		for _, name := range req.Features {
			if v, ok := fromSDKValue(row[name]); ok {
				values[name] = v
			}
		}
		vectors[i] = FeatureVector{Values: values, EntityRow: req.EntityRows[i]}
	}
	return &GetOnlineFeaturesResponse{FeatureVectors: vectors}, nil
}

// Close 释放客户端。SDK 的连接由 gRPC 库管理，这里只解除引用。
func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

// toSDKValue 将实体值转换为 SDK 的 *types.Value
func toSDKValue(v any) *types.Value {
	switch val := v.(type) {
	case string:
		return feastsdk.StrVal(val)
	case int:
		return feastsdk.Int64Val(int64(val))
	case int64:
		return feastsdk.Int64Val(val)
	case int32:
		return feastsdk.Int64Val(int64(val))
	case float64:
		return feastsdk.DoubleVal(val)
	case float32:
		return feastsdk.FloatVal(val)
	case bool:
		return feastsdk.BoolVal(val)
	case []byte:
		return feastsdk.BytesVal(val)
	default:
		return feastsdk.StrVal(fmt.Sprintf("%v", val))
	}
}

// fromSDKValue 提取数值型特征；未设置或非数值返回 false。
// 布尔值按 1/0 处理。
func fromSDKValue(v *types.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.GetVal().(type) {
	case *types.Value_DoubleVal:
		return val.DoubleVal, true
	case *types.Value_FloatVal:
		return float64(val.FloatVal), true
	case *types.Value_Int64Val:
		return float64(val.Int64Val), true
	case *types.Value_Int32Val:
		return float64(val.Int32Val), true
	case *types.Value_BoolVal:
		if val.BoolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

var _ Client = (*GrpcClient)(nil)
