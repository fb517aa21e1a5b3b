package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// DecodeOutput 将 JSON 解码后的预测结果还原为原始输出形态，供 adapter 判定：
//
//   - 数值列表              → rank-1 *core.NDArray（null 为 NaN）
//   - 等长列表的列表        → rank-2 *core.NDArray
//   - 对象列表（records）   → *core.Frame，列为所有对象键的并集（按字典序）
//   - 列名 → 列表（columns）→ *core.Frame
//   - 其他                  → 原样返回（adapter 报 UNSUPPORTED_TYPE）
//
// Frame 中无法转为数值的单元格（如 fast.ai 的概率数组）记为 NaN，列数保持不变。
func DecodeOutput(v any) (any, error) {
	switch val := v.(type) {
	case []any:
		return decodeList(val)
	case map[string]any:
		return decodeColumns(val)
	default:
		return v, nil
	}
}

// DecodeOutputJSON 解析 JSON 文本后调用 DecodeOutput
func DecodeOutputJSON(body []byte) (any, error) {
	v, err := unmarshalAny(body)
	if err != nil {
		return nil, err
	}
	return DecodeOutput(v)
}

func unmarshalAny(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return v, nil
}

func decodeList(list []any) (any, error) {
	if len(list) == 0 {
		return core.NewArray(nil), nil
	}
	if values, ok := conv.ToNumericSlice(list); ok {
		return core.NewArray(values), nil
	}
	switch list[0].(type) {
	case []any:
		rows := make([][]float64, len(list))
		for i, e := range list {
			inner, ok := e.([]any)
			if !ok {
				return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedType, "mixed list output at element %d: %T", i, e)
			}
			row, ok := conv.ToNumericSlice(inner)
			if !ok {
				// 更高维或非数值的嵌套结构
				return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedShape, "nested list output at element %d is not numeric", i)
			}
			rows[i] = row
		}
		return core.NewMatrix(rows)
	case map[string]any:
		return decodeRecords(list)
	}
	return list, nil
}

func decodeRecords(list []any) (*core.Frame, error) {
	seen := make(map[string]struct{})
	records := make([]map[string]any, len(list))
	for i, e := range list {
		rec, ok := e.(map[string]any)
		if !ok {
			return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedType, "mixed records output at element %d: %T", i, e)
		}
		records[i] = rec
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	names := sortedKeys(seen)
	cols := make(map[string][]float64, len(names))
	for _, name := range names {
		values := make([]float64, len(records))
		for i, rec := range records {
			values[i] = cellValue(rec[name])
		}
		cols[name] = values
	}
	return core.FrameFromColumns(nil, names, cols)
}

func decodeColumns(m map[string]any) (any, error) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make(map[string][]float64, len(names))
	rows := -1
	for _, name := range names {
		list, ok := m[name].([]any)
		if !ok {
			// 不是 columns 结构（如单个对象），交由 adapter 报类型错误
			return m, nil
		}
		if rows >= 0 && len(list) != rows {
			return nil, core.Errorf(core.ModuleService, core.ErrorCodeUnsupportedShape,
				"column %q has %d rows, want %d", name, len(list), rows)
		}
		rows = len(list)
		values := make([]float64, len(list))
		for i, e := range list {
			values[i] = cellValue(e)
		}
		cols[name] = values
	}
	return core.FrameFromColumns(nil, names, cols)
}

func cellValue(v any) float64 {
	if f, ok := conv.ToFloat64OrNaN(v); ok {
		if _, isBool := v.(bool); !isBool {
			return f
		}
	}
	return math.NaN()
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
