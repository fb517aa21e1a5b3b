package scorekit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
)

func TestFacade(t *testing.T) {
	input, err := core.FrameFromColumns([]string{"x", "y"}, []string{"area"}, map[string][]float64{"area": {1, 2}})
	require.NoError(t, err)

	data, err := Adapt([]float64{0.5, 0.7}, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, data.Index())

	m := &core.ModelFunc{Fn: func(ctx context.Context, in *Frame) (any, error) {
		return core.NewArray([]float64{1, 2}), nil
	}}
	data, err = Predict(context.Background(), m, input)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, data.Values())

	_, err = Adapt("nope", input)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, core.ErrorCodeUnsupportedType, de.Code)
}
