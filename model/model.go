// Package model 提供本地回归模型与简单 RPC 模型，均实现 core.Model。
//
// 模型只负责产出原始输出（*core.NDArray 或 *core.Frame），
// 取列、校验、对齐索引统一由 adapter 完成。
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadJSON 从文件读取 JSON 到 v
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse model file %s: %w", path, err)
	}
	return nil
}
