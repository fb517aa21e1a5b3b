package pipeline

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// StaticSource 从固定的 Frame 中按行标识取数据，用于测试与离线回放。
type StaticSource struct {
	Frame *core.Frame
}

// Fetch 按 ids 顺序返回对应行，任一 id 不存在返回 NOT_FOUND。
func (s *StaticSource) Fetch(ctx context.Context, ids []string) (*core.Frame, error) {
	if s.Frame == nil {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeInvalidInput, "static source: frame is nil")
	}
	pos := make(map[string]int, s.Frame.NumRows())
	for i, id := range s.Frame.Index() {
		pos[id] = i
	}
	rows := make([]int, len(ids))
	for i, id := range ids {
		p, ok := pos[id]
		if !ok {
			return nil, core.Errorf(core.ModuleSource, core.ErrorCodeNotFound, "static source: row %q not found", id)
		}
		rows[i] = p
	}

	out := core.NewFrame(ids)
	for _, name := range s.Frame.Columns() {
		col, _ := s.Frame.Column(name)
		values := make([]float64, len(rows))
		for i, p := range rows {
			values[i] = col.Values[p]
		}
		if err := out.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var _ core.FrameSource = (*StaticSource)(nil)
