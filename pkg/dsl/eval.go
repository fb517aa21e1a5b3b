package dsl

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// 表达式中可用的变量名
const (
	VarPrediction = "prediction"
	VarID         = "id"
	VarFeatures   = "features"
)

// newEnv 创建校验规则使用的 CEL 环境
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarPrediction, cel.DoubleType),
		cel.Variable(VarID, cel.StringType),
		cel.Variable(VarFeatures, cel.MapType(cel.StringType, cel.DoubleType)),
	)
}

// Guard 是逐行校验预测值的规则，使用 CEL (Common Expression Language) 实现。
// 表达式在创建时编译一次，Check 可并发调用。
//
// 表达式语法（CEL 标准语法）：
//   - 范围：prediction >= 0.0 && prediction < 1e7
//   - 按行：id.startsWith("test_") || prediction > 0.0
//   - 结合特征："area" in features && prediction <= features["area"] * 10000.0
//
// 注意：整数字面量需写成浮点形式（0.0 而非 0），CEL 不做 int/double 隐式转换。
type Guard struct {
	expr string
	prg  cel.Program
}

// NewGuard 编译表达式。空表达式返回 nil（不校验）。
func NewGuard(expr string) (*Guard, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("guard env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("guard compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("guard %q must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("guard program %q: %w", expr, err)
	}
	return &Guard{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式
func (g *Guard) Expr() string { return g.expr }

// Check 对一行预测求值。features 可为 nil。
func (g *Guard) Check(id string, prediction float64, features map[string]float64) (bool, error) {
	if features == nil {
		features = map[string]float64{}
	}
	out, _, err := g.prg.Eval(map[string]any{
		VarPrediction: prediction,
		VarID:         id,
		VarFeatures:   features,
	})
	if err != nil {
		return false, fmt.Errorf("guard eval %q: %w", g.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("guard %q must return bool, got %T", g.expr, out.Value())
	}
	return result, nil
}
