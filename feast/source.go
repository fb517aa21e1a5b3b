package feast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/logx"
)

// EntityType 实体 ID 在 Feast 中的类型
type EntityType string

const (
	EntityString EntityType = "string"
	EntityInt64  EntityType = "int64"
)

// Source 从 Feast 在线特征构建模型输入，实现 core.FrameSource。
//
// 输出 Frame 的行索引为传入的实体 ID，每个特征一列；
// Feast 未返回（或非数值）的特征值为 NaN，交由模型与 adapter 处理。
type Source struct {
	Client     Client
	EntityKey  string     // 实体列名，例如 "house_id"
	EntityType EntityType // 默认 string
	Features   []string   // 例如 ["house_stats:area", "house_stats:rooms"]
	Project    string

	// Columns 特征列重命名（特征名 -> 列名），为空时去掉 "view:" 前缀
	Columns map[string]string

	Logger *slog.Logger
}

// Fetch 按实体 ID 获取特征（实现 core.FrameSource）
func (s *Source) Fetch(ctx context.Context, ids []string) (*core.Frame, error) {
	if len(ids) == 0 {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeEmptyInput, "feast: no entity ids")
	}
	if s.Client == nil || s.EntityKey == "" || len(s.Features) == 0 {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeInvalidInput, "feast: client, entity key and features are required")
	}

	rows := make([]map[string]any, len(ids))
	for i, id := range ids {
		v, err := s.entityValue(id)
		if err != nil {
			return nil, err
		}
		rows[i] = map[string]any{s.EntityKey: v}
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   s.Features,
		EntityRows: rows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, &core.DomainError{
			Module:  core.ModuleSource,
			Code:    core.ErrorCodeUnavailable,
			Message: "feast: fetch online features",
			Err:     err,
		}
	}
	if len(resp.FeatureVectors) != len(ids) {
		return nil, core.Errorf(core.ModuleSource, core.ErrorCodeLengthMismatch,
			"feast: got %d feature vectors for %d entities", len(resp.FeatureVectors), len(ids))
	}

	frame := core.NewFrame(ids)
	missing := 0
	for _, feature := range s.Features {
		values := make([]float64, len(ids))
		for i, fv := range resp.FeatureVectors {
			v, ok := fv.Values[feature]
			if !ok {
				v = math.NaN()
				missing++
			}
			values[i] = v
		}
		if err := frame.AddColumn(s.columnName(feature), values); err != nil {
			return nil, err
		}
	}

	logx.OrNoop(s.Logger).DebugContext(ctx, "feast features fetched",
		slog.Int("rows", len(ids)),
		slog.Int("features", len(s.Features)),
		slog.Int("missing", missing))
	return frame, nil
}

func (s *Source) entityValue(id string) (any, error) {
	switch s.EntityType {
	case "", EntityString:
		return id, nil
	case EntityInt64:
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, core.Errorf(core.ModuleSource, core.ErrorCodeInvalidInput, "feast: entity id %q is not int64", id)
		}
		return v, nil
	default:
		return nil, core.Errorf(core.ModuleSource, core.ErrorCodeNotSupported, "feast: unsupported entity type %q", s.EntityType)
	}
}

func (s *Source) columnName(feature string) string {
	if name, ok := s.Columns[feature]; ok {
		return name
	}
	for i := len(feature) - 1; i >= 0; i-- {
		if feature[i] == ':' {
			return feature[i+1:]
		}
	}
	return feature
}

// Close 关闭底层 Client
func (s *Source) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

func (s *Source) String() string {
	return fmt.Sprintf("feast.Source(entity=%s, features=%d)", s.EntityKey, len(s.Features))
}

var _ core.FrameSource = (*Source)(nil)
