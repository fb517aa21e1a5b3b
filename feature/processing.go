// Package feature 在模型调用前对输入 Frame 做列级预处理：
// 缺失值填充、标准化/归一化、长尾变换与列选择。
//
// 处理器不修改输入，总是返回新的 Frame，行索引保持不变。
package feature

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/scorekit/core"
)

// Processor 是特征处理器的统一接口
type Processor interface {
	Name() string
	Process(input *core.Frame) (*core.Frame, error)
}

// Apply 依次执行处理器
func Apply(input *core.Frame, processors ...Processor) (*core.Frame, error) {
	cur := input
	for _, p := range processors {
		next, err := p.Process(cur)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", p.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// mapColumns 对每一列应用 fn，fn 返回 nil 表示该列不变
func mapColumns(input *core.Frame, fn func(name string, values []float64) []float64) (*core.Frame, error) {
	out := newLike(input)
	for _, name := range input.Columns() {
		col, _ := input.Column(name)
		values := col.Values
		if mapped := fn(name, values); mapped != nil {
			values = mapped
		}
		if err := out.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// newLike 返回与 input 行索引相同的空 Frame
func newLike(input *core.Frame) *core.Frame {
	if input.HasIndex() {
		return core.NewFrame(input.Index())
	}
	return core.NewFrame(nil)
}

func mapValues(values []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = fn(v)
	}
	return out
}

// ZScoreNormalizer Z-score 标准化（Standardization）
// 公式: z = (x - μ) / σ
// 未配置统计量或 σ <= 0 的列保持不变。
type ZScoreNormalizer struct {
	Mean map[string]float64 // 特征均值
	Std  map[string]float64 // 特征标准差
}

// NewZScoreNormalizer 创建 Z-score 标准化器
func NewZScoreNormalizer(mean, std map[string]float64) *ZScoreNormalizer {
	return &ZScoreNormalizer{Mean: mean, Std: std}
}

func (n *ZScoreNormalizer) Name() string { return "zscore" }

func (n *ZScoreNormalizer) Process(input *core.Frame) (*core.Frame, error) {
	return mapColumns(input, func(name string, values []float64) []float64 {
		std, ok := n.Std[name]
		if !ok || std <= 0 {
			return nil
		}
		mean := n.Mean[name]
		return mapValues(values, func(v float64) float64 { return (v - mean) / std })
	})
}

// MinMaxNormalizer Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 未配置或 max <= min 的列保持不变。
type MinMaxNormalizer struct {
	Min map[string]float64 // 特征最小值
	Max map[string]float64 // 特征最大值
}

// NewMinMaxNormalizer 创建 Min-Max 归一化器
func NewMinMaxNormalizer(min, max map[string]float64) *MinMaxNormalizer {
	return &MinMaxNormalizer{Min: min, Max: max}
}

func (n *MinMaxNormalizer) Name() string { return "minmax" }

func (n *MinMaxNormalizer) Process(input *core.Frame) (*core.Frame, error) {
	return mapColumns(input, func(name string, values []float64) []float64 {
		lo, okMin := n.Min[name]
		hi, okMax := n.Max[name]
		if !okMin || !okMax || hi <= lo {
			return nil
		}
		return mapValues(values, func(v float64) float64 { return (v - lo) / (hi - lo) })
	})
}

// LogNormalizer Log 变换
// 公式: x' = log(x + 1)，负值记为 0
// Columns 为空时作用于所有列。
type LogNormalizer struct {
	Columns []string
}

func (n *LogNormalizer) Name() string { return "log1p" }

func (n *LogNormalizer) Process(input *core.Frame) (*core.Frame, error) {
	selected := toSet(n.Columns)
	return mapColumns(input, func(name string, values []float64) []float64 {
		if len(selected) > 0 && !selected[name] {
			return nil
		}
		return mapValues(values, func(v float64) float64 {
			if v < 0 {
				return 0
			}
			return math.Log1p(v)
		})
	})
}

// 缺失值处理策略
const (
	StrategyConstant = "constant" // 使用 DefaultValues / DefaultValue
	StrategyMean     = "mean"     // 使用该列非 NaN 值的均值
	StrategyMedian   = "median"   // 使用该列非 NaN 值的中位数
)

// MissingValueHandler 缺失值处理器。
//
// NaN 视为缺失；Required 中不存在的列会被补齐（整列按 constant 策略填充）。
// 列全部缺失时 mean/median 退化为 constant。
type MissingValueHandler struct {
	// Strategy 处理策略：constant, mean, median
	Strategy string
	// DefaultValues 特征特定的默认值
	DefaultValues map[string]float64
	// DefaultValue 全局默认值
	DefaultValue float64
	// Required 必须存在的列
	Required []string
}

// NewMissingValueHandler 创建缺失值处理器
func NewMissingValueHandler(strategy string, defaultValue float64) *MissingValueHandler {
	return &MissingValueHandler{
		Strategy:      strategy,
		DefaultValues: make(map[string]float64),
		DefaultValue:  defaultValue,
	}
}

// WithDefaultValues 设置特征特定的默认值
func (h *MissingValueHandler) WithDefaultValues(defaults map[string]float64) *MissingValueHandler {
	h.DefaultValues = defaults
	return h
}

// WithRequired 设置必须存在的列
func (h *MissingValueHandler) WithRequired(columns []string) *MissingValueHandler {
	h.Required = columns
	return h
}

func (h *MissingValueHandler) Name() string { return "missing" }

func (h *MissingValueHandler) constant(name string) float64 {
	if v, ok := h.DefaultValues[name]; ok {
		return v
	}
	return h.DefaultValue
}

func (h *MissingValueHandler) fillValue(name string, values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return h.constant(name)
	}
	switch h.Strategy {
	case StrategyMean:
		return ComputeStatistics(present).Mean
	case StrategyMedian:
		return ComputeStatistics(present).Median
	default:
		return h.constant(name)
	}
}

func (h *MissingValueHandler) Process(input *core.Frame) (*core.Frame, error) {
	switch h.Strategy {
	case "", StrategyConstant, StrategyMean, StrategyMedian:
	default:
		return nil, fmt.Errorf("unsupported missing value strategy %q", h.Strategy)
	}
	out, err := mapColumns(input, func(name string, values []float64) []float64 {
		fill := math.NaN()
		filled := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				if math.IsNaN(fill) {
					fill = h.fillValue(name, values)
				}
				v = fill
			}
			filled[i] = v
		}
		return filled
	})
	if err != nil {
		return nil, err
	}
	for _, name := range h.Required {
		if out.HasColumn(name) {
			continue
		}
		values := make([]float64, input.NumRows())
		for i := range values {
			values[i] = h.constant(name)
		}
		if err := out.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FeatureSelector 特征选择器。
// 指定 Selected 时按其顺序只保留这些列（缺失的列报错），否则保留除 Excluded 以外的列。
type FeatureSelector struct {
	Selected []string
	Excluded []string
}

// NewFeatureSelector 创建特征选择器
func NewFeatureSelector(selected []string) *FeatureSelector {
	return &FeatureSelector{Selected: selected}
}

// WithExcludedFeatures 设置排除的特征
func (s *FeatureSelector) WithExcludedFeatures(excluded []string) *FeatureSelector {
	s.Excluded = excluded
	return s
}

func (s *FeatureSelector) Name() string { return "select" }

func (s *FeatureSelector) Process(input *core.Frame) (*core.Frame, error) {
	names := s.Selected
	if len(names) == 0 {
		excluded := toSet(s.Excluded)
		for _, name := range input.Columns() {
			if !excluded[name] {
				names = append(names, name)
			}
		}
	}
	out := newLike(input)
	for _, name := range names {
		col, ok := input.Column(name)
		if !ok {
			return nil, core.Errorf(core.ModuleFrame, core.ErrorCodeNotFound, "column %q not found", name)
		}
		if err := out.AddColumn(name, col.Values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// FeatureStatistics 特征统计信息
type FeatureStatistics struct {
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
	P25    float64
	P75    float64
	P95    float64
	P99    float64
}

// ComputeStatistics 计算特征统计信息
func ComputeStatistics(values []float64) *FeatureStatistics {
	if len(values) == 0 {
		return &FeatureStatistics{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats := &FeatureStatistics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.Std = math.Sqrt(variance / float64(len(values)))

	stats.Median = computePercentile(sorted, 0.5)
	stats.P25 = computePercentile(sorted, 0.25)
	stats.P75 = computePercentile(sorted, 0.75)
	stats.P95 = computePercentile(sorted, 0.95)
	stats.P99 = computePercentile(sorted, 0.99)

	return stats
}

// FitZScore 由 Frame 计算各列均值与标准差（忽略 NaN）
func FitZScore(input *core.Frame) *ZScoreNormalizer {
	n := NewZScoreNormalizer(make(map[string]float64), make(map[string]float64))
	for _, name := range input.Columns() {
		col, _ := input.Column(name)
		present := make([]float64, 0, col.Len())
		for _, v := range col.Values {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		stats := ComputeStatistics(present)
		n.Mean[name] = stats.Mean
		n.Std[name] = stats.Std
	}
	return n
}

// computePercentile 计算分位数（线性插值）
func computePercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

var (
	_ Processor = (*ZScoreNormalizer)(nil)
	_ Processor = (*MinMaxNormalizer)(nil)
	_ Processor = (*LogNormalizer)(nil)
	_ Processor = (*MissingValueHandler)(nil)
	_ Processor = (*FeatureSelector)(nil)
)
