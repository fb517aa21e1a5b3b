package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/scorekit/core"
)

// KafkaConfig Kafka 写入配置
type KafkaConfig struct {
	Brokers []string // Kafka Broker 地址列表
	Topic   string

	ClientID     string // 默认 "scorekit-producer"
	RequiredAcks int16  // -1=all，其余按 leader 处理
	Compression  string // gzip, snappy, lz4, zstd
}

// ScoreMessage 写入 Kafka 的单条预测消息（JSON）
type ScoreMessage struct {
	Model      string  `json:"model"`
	ID         string  `json:"id"`
	Prediction float64 `json:"prediction"`
	Timestamp  int64   `json:"ts"`
}

// KafkaStore 把预测结果逐行发布到 Kafka，供下游实时消费。
// 只写：Load 返回 NOT_SUPPORTED，ttl 被忽略。
type KafkaStore struct {
	client *kgo.Client
	topic  string
	now    func() time.Time
}

// NewKafkaStore 创建 Kafka 写入端。客户端延迟连接，创建时不校验 Broker 可达。
func NewKafkaStore(cfg KafkaConfig) (*KafkaStore, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: kafka brokers and topic are required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "scorekit-producer"
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
	}
	acks := kgo.LeaderAck()
	if cfg.RequiredAcks == -1 {
		acks = kgo.AllISRAcks()
	}
	opts = append(opts, kgo.RequiredAcks(acks))
	if cfg.RequiredAcks != -1 {
		// 幂等写入要求 acks=all
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	switch cfg.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	case "", "none":
	default:
		return nil, core.Errorf(core.ModuleStore, core.ErrorCodeNotSupported, "store: unsupported kafka compression %q", cfg.Compression)
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaStore{client: client, topic: cfg.Topic, now: time.Now}, nil
}

func (k *KafkaStore) Name() string { return "kafka" }

// Save 同步发布，所有消息确认后返回；任一失败返回第一个错误。
func (k *KafkaStore) Save(ctx context.Context, model string, data *core.ScoringData, ttl ...int) error {
	if err := checkSave(model, data); err != nil {
		return err
	}
	records, err := buildRecords(model, data, k.now())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := k.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaStore) Load(ctx context.Context, model string, ids []string) (map[string]float64, error) {
	return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, "store: kafka store is write-only")
}

func (k *KafkaStore) Close() error {
	k.client.Close()
	return nil
}

// buildRecords 每行一条消息，key 为行标识，header 带模型名
func buildRecords(model string, data *core.ScoringData, now time.Time) ([]*kgo.Record, error) {
	records := make([]*kgo.Record, 0, data.Len())
	for i, id := range data.Preds.Index {
		value, err := json.Marshal(ScoreMessage{
			Model:      model,
			ID:         id,
			Prediction: data.Preds.Values[i],
			Timestamp:  now.Unix(),
		})
		if err != nil {
			// +Inf 等无法编码为 JSON
			return nil, core.Errorf(core.ModuleStore, core.ErrorCodeInvalidValue, "store: encode prediction for %q: %v", id, err)
		}
		records = append(records, &kgo.Record{
			Key:     []byte(id),
			Value:   value,
			Headers: []kgo.RecordHeader{{Key: "model", Value: []byte(model)}},
		})
	}
	return records, nil
}

var _ core.ScoreStore = (*KafkaStore)(nil)
