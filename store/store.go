// Package store 提供 core.ScoreStore 的实现：预测结果的落地存储。
//
// 接口定义在 core 包，这里只有实现：
//
//	var s core.ScoreStore = store.NewMemoryStore()
//	_ = s.Save(ctx, "price", data, 3600)
//	scores, _ := s.Load(ctx, "price", []string{"a", "b"})
package store

import (
	"fmt"
	"time"

	"github.com/rushteam/scorekit/core"
)

// ErrNotFound 与 core.ErrStoreNotFound 相同，便于 store 包内直接引用
var ErrNotFound = core.ErrStoreNotFound

// ttlDuration 解析可选 ttl 参数（秒），<=0 表示不过期
func ttlDuration(ttl []int) time.Duration {
	if len(ttl) > 0 && ttl[0] > 0 {
		return time.Duration(ttl[0]) * time.Second
	}
	return 0
}

// checkSave 校验 Save 的公共参数
func checkSave(model string, data *core.ScoringData) error {
	if model == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: model name is required")
	}
	if data == nil || data.Preds == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: scoring data is nil")
	}
	return nil
}

// New 按类型创建存储。
//   - memory：无需参数
//   - redis：addr 为 "host:port"，db 为库号
//   - sqlite：addr 为 DSN（文件路径）
//   - kafka：addr 为 Broker 地址，topic 固定为 "predictions"
func New(storeType, addr string, db int) (core.ScoreStore, error) {
	switch storeType {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(addr, db)
	case "sqlite":
		return NewSQLStore(addr)
	case "kafka":
		return NewKafkaStore(KafkaConfig{Brokers: []string{addr}, Topic: "predictions"})
	default:
		return nil, core.Errorf(core.ModuleStore, core.ErrorCodeNotSupported, "store: unsupported type %q", storeType)
	}
}

func scoreKey(model string) string {
	return fmt.Sprintf("score:%s", model)
}
