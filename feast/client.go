// Package feast 从 Feast 在线特征存储获取模型输入。
//
// Client 抽象在线特征读取，GrpcClient 基于官方 Go SDK 实现；
// Source 把实体 ID 列表转换为以这些 ID 为行索引的 *core.Frame，实现 core.FrameSource。
//
// 参考：https://github.com/feast-dev/feast
package feast

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Client 是 Feast Feature Store 的在线特征客户端接口。
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时预测）
	//
	//   - Features: 特征名称列表，例如 ["house_stats:area", "house_stats:rooms"]
	//   - EntityRows: 实体行，例如 [{"house_id": 1001}]
	//
	// 返回的 FeatureVectors 与 EntityRows 一一对应。
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]any
	Project    string // 可选，默认使用客户端的 Project
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}

// FeatureVector 一个实体行的特征值。
// 只包含数值型（可转换为 float64）且存在的特征。
type FeatureVector struct {
	Values    map[string]float64
	EntityRow map[string]any
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
}

// AuthConfig 认证配置。目前 gRPC 只支持 static（静态 Token）。
type AuthConfig struct {
	Type  string
	Token string
	TLS   bool
}

// WithTimeout 配置选项：单次请求超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}

// ParseEndpoint 解析端点地址，返回 host 和 port（未指定端口时为 0）
func ParseEndpoint(endpoint string) (string, int) {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "grpc://")

	host, portStr, ok := strings.Cut(endpoint, ":")
	if ok {
		if port, err := strconv.Atoi(portStr); err == nil {
			return host, port
		}
	}
	return endpoint, 0
}
