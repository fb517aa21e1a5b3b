package service

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// RemoteModel 是远程模型服务的统一接口，用于对接 MLflow、KServe、TF Serving、TorchServe 等。
//
// 设计目标：
//   - 统一不同模型服务的调用方式：输入 core.Frame，返回服务端原始输出形态
//   - 不在客户端做“取哪一列”的判断，交给 adapter 统一判定
//   - 支持超时控制与认证
//
// 使用示例：
//
//	m := service.NewMLflowClient("http://localhost:5000", "house-price")
//	data, err := adapter.PredictRegression(ctx, m, input)
type RemoteModel interface {
	core.Model

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close() error
}

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeMLflow     ServiceType = "mlflow"      // MLflow scoring server
	ServiceTypeKServe     ServiceType = "kserve"      // KServe V1/V2
	ServiceTypeTFServing  ServiceType = "tf_serving"  // TensorFlow Serving
	ServiceTypeTorchServe ServiceType = "torch_serve" // TorchServe
)

// InputFormat 请求中输入行的编码方式
type InputFormat string

const (
	// InputInstances 按行数组：[[f1, f2, ...], ...]，列顺序同 Frame.Columns
	InputInstances InputFormat = "instances"
	// InputRecords 按行对象：[{"f1": 0.1, "f2": 0.2}, ...]
	InputRecords InputFormat = "records"
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType

	// Endpoint 服务根地址
	// MLflow: "http://localhost:5000"
	// KServe: "http://localhost:8000"
	// TF Serving: "http://localhost:8501"
	// TorchServe: "http://localhost:8080"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本
	ModelVersion string

	// Timeout 超时时间（秒）
	Timeout int

	// Protocol KServe 协议版本（"v1" / "v2"）
	Protocol string

	// InputFormat 输入编码方式（KServe V1、TF Serving、TorchServe 使用）
	InputFormat InputFormat

	// Auth 认证信息（可选）
	Auth *AuthConfig

	// Params 额外参数
	Params map[string]interface{}
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}
