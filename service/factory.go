package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NewModel 根据配置创建 RemoteModel 实例（工厂方法）。
func NewModel(config *ServiceConfig) (RemoteModel, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	switch config.Type {
	case ServiceTypeMLflow:
		opts := []MLflowOption{
			WithMLflowTimeout(timeout),
		}
		if config.Auth != nil {
			opts = append(opts, WithMLflowAuth(config.Auth))
		}
		return NewMLflowClient(config.Endpoint, config.ModelName, opts...), nil

	case ServiceTypeKServe:
		opts := []KServeOption{
			WithKServeTimeout(timeout),
			WithKServeInputFormat(config.InputFormat),
		}
		if config.Protocol != "" {
			opts = append(opts, WithKServeProtocol(config.Protocol))
		}
		if config.ModelVersion != "" {
			opts = append(opts, WithKServeVersion(config.ModelVersion))
		}
		if name, ok := config.Params["v2_input_name"].(string); ok && name != "" {
			opts = append(opts, WithKServeV2InputName(name))
		}
		if name, ok := config.Params["v2_output_name"].(string); ok && name != "" {
			opts = append(opts, WithKServeV2OutputName(name))
		}
		if config.Auth != nil {
			opts = append(opts, WithKServeAuth(config.Auth))
		}
		return NewKServeClient(config.Endpoint, config.ModelName, opts...), nil

	case ServiceTypeTFServing:
		opts := []TFServingOption{
			WithTFServingTimeout(timeout),
			WithTFServingInputFormat(config.InputFormat),
		}
		if config.ModelVersion != "" {
			opts = append(opts, WithTFServingVersion(config.ModelVersion))
		}
		if sig, ok := config.Params["signature_name"].(string); ok {
			opts = append(opts, WithTFServingSignature(sig))
		}
		if config.Auth != nil {
			opts = append(opts, WithTFServingAuth(config.Auth))
		}
		return NewTFServingClient(config.Endpoint, config.ModelName, opts...), nil

	case ServiceTypeTorchServe:
		opts := []TorchServeOption{
			WithTorchServeTimeout(timeout),
			WithTorchServeInputFormat(config.InputFormat),
		}
		if config.ModelVersion != "" {
			opts = append(opts, WithTorchServeVersion(config.ModelVersion))
		}
		if config.Auth != nil {
			opts = append(opts, WithTorchServeAuth(config.Auth))
		}
		return NewTorchServeClient(config.Endpoint, config.ModelName, opts...), nil

	default:
		return nil, fmt.Errorf("unsupported service type: %s", config.Type)
	}
}

// hasHTTPPrefix 检查是否包含 HTTP 前缀
func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateConfig 验证服务配置
func ValidateConfig(config *ServiceConfig) error {
	if config == nil {
		return fmt.Errorf("service config is required")
	}
	if config.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if !hasHTTPPrefix(config.Endpoint) {
		return fmt.Errorf("endpoint must start with http:// or https://: %s", config.Endpoint)
	}
	if config.ModelName == "" && config.Type != ServiceTypeMLflow {
		return fmt.Errorf("model name is required")
	}
	switch config.InputFormat {
	case "", InputInstances, InputRecords:
	default:
		return fmt.Errorf("unsupported input format: %s", config.InputFormat)
	}
	return nil
}

// TestConnection 测试服务连接
func TestConnection(ctx context.Context, svc RemoteModel) error {
	if svc == nil {
		return fmt.Errorf("service is nil")
	}
	return svc.Health(ctx)
}
