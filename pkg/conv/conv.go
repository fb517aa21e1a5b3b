// Package conv 提供类型转换、配置取值等工具，主要服务于 JSON/YAML 解码后的 any 值。
package conv

import (
	"encoding/json"
	"fmt"
	"math"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32、json.Number；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToFloat64OrNaN 与 ToFloat64 相同，但 nil 视为 NaN（JSON 中的 null 预测值）。
func ToFloat64OrNaN(v any) (float64, bool) {
	if v == nil {
		return math.NaN(), true
	}
	return ToFloat64(v)
}

// ToFloat64Slice 将 []any 转为 []float64，任一元素无法转换时返回 false。null 元素转为 NaN。
func ToFloat64Slice(v any) ([]float64, bool) {
	switch val := v.(type) {
	case []float64:
		return append([]float64(nil), val...), true
	case []any:
		out := make([]float64, len(val))
		for i, e := range val {
			f, ok := ToFloat64OrNaN(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// ToNumericSlice 与 ToFloat64Slice 相同，但布尔元素视为无法转换。
// 用于解析模型输出：布尔列表属于分类结果，不能当作数值预测。
func ToNumericSlice(v any) ([]float64, bool) {
	if list, ok := v.([]any); ok {
		for _, e := range list {
			if _, isBool := e.(bool); isBool {
				return nil, false
			}
		}
	}
	return ToFloat64Slice(v)
}

// ToInt 将 any 转为 int。
// 支持 int、int64、int32、float64、float32。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ToString 将 any 转为 string。
// string 直接返回；数字格式化为最短表示（用于 JSON 中的数值型索引）。
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		if f, ok := ToFloat64(v); ok {
			return fmt.Sprintf("%v", f), true
		}
		return "", false
	}
}

// ConvertSlice 将 []T 按 convert 转为 []U，convert 返回 false 的元素被跳过。
func ConvertSlice[T, U any](s []T, convert func(T) (U, bool)) []U {
	if s == nil {
		return nil
	}
	out := make([]U, 0, len(s))
	for _, v := range s {
		if u, ok := convert(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// SliceAnyToString 将 []any 转为 []string，无法转换的元素被跳过。
func SliceAnyToString(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		return ConvertSlice(val, ToString)
	default:
		return nil
	}
}

// MapToFloat64 将 map[string]any 转为 map[string]float64，仅保留可转为 float64 的 value。
func MapToFloat64(m map[string]any) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if f, ok := ToFloat64(v); ok {
			out[k] = f
		}
	}
	return out
}

// ConfigGet 从 map[string]any（如 YAML/JSON 解析结果）按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 从 config 取 int64。YAML/JSON 常得到 int 或 float64，此处兼容并统一为 int64。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if m == nil {
		return defaultVal
	}
	if n, ok := ToInt(m[key]); ok {
		return int64(n)
	}
	return defaultVal
}

// ConfigGetFloat64 从 config 取 float64，兼容整数写法（如 YAML 中的 `bias: 1`）。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if m == nil {
		return defaultVal
	}
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return defaultVal
}
