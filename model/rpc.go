package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/service"
)

// RPCModel 是通过 HTTP 调用自建打分服务的 core.Model 实现。
// 适用于 GBDT、XGBoost 等以简单 JSON 协议暴露的模型。
type RPCModel struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/predict"
	Timeout  time.Duration
	Client   *http.Client
}

func NewRPCModel(name, endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *RPCModel) Name() string {
	return m.name
}

// Predict 调用远程打分服务进行批量预测。
// 请求格式（JSON）：
//
//	{"features_list": [{"area": 80, "rooms": 3}, ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72, ...]}
//
// scores 经 service.DecodeOutput 还原，条数不在此处校验。
func (m *RPCModel) Predict(ctx context.Context, input *core.Frame) (any, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}

	featuresList := make([]map[string]float64, input.NumRows())
	for i := range featuresList {
		featuresList[i] = input.Row(i)
	}
	jsonData, err := json.Marshal(map[string]any{
		"features_list": featuresList,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		Scores any `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return service.DecodeOutput(result.Scores)
}

var _ core.Model = (*RPCModel)(nil)
