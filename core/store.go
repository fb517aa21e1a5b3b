package core

import "context"

// ScoreStore 是预测结果存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 按模型名分区，行标识为键
//
// 实现：
//   - store.MemoryStore：测试/开发
//   - store.RedisStore：在线读取
//   - store.SQLStore：离线落库（SQLite）
type ScoreStore interface {
	// Name 存储名称（如 "memory", "redis", "sqlite"）
	Name() string

	// Save 保存一次预测结果，ttl 单位为秒（可选，部分实现忽略）
	Save(ctx context.Context, model string, data *ScoringData, ttl ...int) error

	// Load 读取指定行的预测值，不存在的行不出现在结果中
	Load(ctx context.Context, model string, ids []string) (map[string]float64, error)

	// Close 关闭连接
	Close() error
}

// FrameSource 按行标识获取模型输入。
//
// 实现：
//   - feast.Source：从 Feast 在线特征构建输入
//   - pipeline.StaticSource：固定数据（测试）
type FrameSource interface {
	Fetch(ctx context.Context, ids []string) (*Frame, error)
}
