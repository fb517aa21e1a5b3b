package adapter

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/logx"
)

// PredictRegression 调用模型预测，并将原始输出规整为 ScoringData。
// 模型返回的错误原样包装返回，不做分类。
func PredictRegression(ctx context.Context, model core.Model, input *core.Frame, opts ...Option) (*core.ScoringData, error) {
	if model == nil {
		return nil, core.NewDomainError(core.ModuleAdapter, core.ErrorCodeInvalidInput, "model is required")
	}
	if input == nil {
		return nil, core.NewDomainError(core.ModuleAdapter, core.ErrorCodeInvalidInput, "input frame is required")
	}
	o := newOptions(opts)

	o.Logger.InfoContext(ctx, "predicting", "model", model.Name(), "rows", input.NumRows())
	output, err := model.Predict(ctx, input)
	logx.LogPredict(ctx, o.Logger, model.Name(), input.NumRows(), err)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", model.Name(), err)
	}
	return adapt(ctx, output, input, o)
}

// AdaptRegression 将模型原始输出规整为 ScoringData，索引替换为 input 的行标识。
func AdaptRegression(output any, input *core.Frame, opts ...Option) (*core.ScoringData, error) {
	if input == nil {
		return nil, core.NewDomainError(core.ModuleAdapter, core.ErrorCodeInvalidInput, "input frame is required")
	}
	return adapt(context.Background(), output, input, newOptions(opts))
}

func adapt(ctx context.Context, output any, input *core.Frame, o *Options) (*core.ScoringData, error) {
	ex, err := ExtractPredictions(output)
	if err != nil {
		return nil, err
	}
	o.Logger.InfoContext(ctx, "model output classified",
		"kind", string(ex.Kind),
		"source", ex.Source,
		"shape", ex.Shape,
	)

	if err := validate(ex.Values, input.NumRows()); err != nil {
		return nil, err
	}

	index := input.Index()
	if o.Guard != nil {
		for i, v := range ex.Values {
			ok, err := o.Guard.Check(index[i], v, input.Row(i))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, core.Errorf(core.ModuleAdapter, core.ErrorCodeInvalidValue,
					"prediction %v for row %q rejected by guard %q", v, index[i], o.Guard.Expr())
			}
		}
	}

	name := ex.Source
	if ex.Kind == KindArray {
		name = o.SeriesName
		if name == "" {
			name = core.PredictionColumn
		}
	}
	preds, err := core.NewSeries(name, index, ex.Values)
	if err != nil {
		return nil, err
	}
	data, err := core.NewScoringData(preds)
	if err != nil {
		return nil, err
	}
	o.Logger.DebugContext(ctx, "scoring data ready", "rows", data.Len())
	return data, nil
}

// validate 依次检查：非空、无 NaN、条数与输入一致。
func validate(values []float64, rows int) error {
	if len(values) == 0 {
		return core.NewDomainError(core.ModuleAdapter, core.ErrorCodeEmptyInput, "cannot work with no data at input")
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return core.Errorf(core.ModuleAdapter, core.ErrorCodeInvalidValue, "model predicted NaN at position %d", i)
		}
	}
	if len(values) != rows {
		return core.Errorf(core.ModuleAdapter, core.ErrorCodeLengthMismatch,
			"model returned %d predictions for %d input rows", len(values), rows)
	}
	return nil
}
