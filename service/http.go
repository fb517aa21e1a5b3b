package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/rushteam/scorekit/core"
)

// addAuth 添加认证信息到 HTTP 请求
func addAuth(req *http.Request, auth *AuthConfig) {
	if auth == nil {
		return
	}
	switch auth.Type {
	case "basic":
		req.SetBasicAuth(auth.Username, auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", auth.APIKey)
	}
}

// postJSON 发送 JSON 请求并返回响应体，非 200 状态码返回错误。
// prefix 用于错误信息（如 "mlflow"、"kserve v2"）。
func postJSON(ctx context.Context, client *http.Client, auth *AuthConfig, prefix, url string, body any) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s marshal request: %w", prefix, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%s create request: %w", prefix, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	addAuth(httpReq, auth)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", prefix, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", prefix, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s error: status=%d, body=%s", prefix, resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}

// checkHealth 发送 GET 请求，200 视为健康
func checkHealth(ctx context.Context, client *http.Client, auth *AuthConfig, prefix, url string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s health create request: %w", prefix, err)
	}
	addAuth(httpReq, auth)

	resp, err := client.Do(httpReq)
	if err != nil {
		return &core.DomainError{
			Module:  core.ModuleService,
			Code:    core.ErrorCodeUnavailable,
			Message: prefix + " health request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return core.Errorf(core.ModuleService, core.ErrorCodeUnavailable,
			"%s health failed: status=%d, body=%s", prefix, resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// encodeInput 按 InputFormat 编码输入行，NaN/Inf 编码为 null
func encodeInput(input *core.Frame, format InputFormat) any {
	if format == InputRecords {
		records := make([]map[string]any, input.NumRows())
		for i := range records {
			row := input.Row(i)
			rec := make(map[string]any, len(row))
			for k, v := range row {
				rec[k] = jsonFloat(v)
			}
			records[i] = rec
		}
		return records
	}
	return encodeRows(input)
}

func encodeRows(input *core.Frame) [][]any {
	values := input.Values()
	rows := make([][]any, len(values))
	for i, row := range values {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = jsonFloat(v)
		}
		rows[i] = out
	}
	return rows
}

func jsonFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func requireRows(prefix string, input *core.Frame) error {
	if input == nil || input.NumRows() == 0 {
		return core.Errorf(core.ModuleService, core.ErrorCodeInvalidInput, "%s: input rows are required", prefix)
	}
	return nil
}
