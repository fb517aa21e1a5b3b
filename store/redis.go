package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rushteam/scorekit/core"
)

// RedisStore 是 Redis 实现的 ScoreStore，生产环境在线读取常用。
//
// 每个模型一个 Hash：key 为 "score:{model}"，field 为行标识，value 为预测值。
// TTL 作用于整个 Hash（EXPIRE）。
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, &core.DomainError{
			Module:  core.ModuleStore,
			Code:    core.ErrorCodeUnavailable,
			Message: "store: redis ping " + addr,
			Err:     err,
		}
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient 使用已有客户端（集群、哨兵等）
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Save(ctx context.Context, model string, data *core.ScoringData, ttl ...int) error {
	if err := checkSave(model, data); err != nil {
		return err
	}
	if data.Len() == 0 {
		return nil
	}
	key := scoreKey(model)
	values := make(map[string]any, data.Len())
	for i, id := range data.Preds.Index {
		values[id] = strconv.FormatFloat(data.Preds.Values[i], 'g', -1, 64)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, values)
	if d := ttlDuration(ttl); d > 0 {
		pipe.Expire(ctx, key, d)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, model string, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return make(map[string]float64), nil
	}
	key := scoreKey(model)
	vals, err := r.client.HMGet(ctx, key, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", key, err)
	}

	result := make(map[string]float64, len(ids))
	for i, id := range ids {
		s, ok := vals[i].(string)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("redis load %s field %q: %w", key, id, err)
		}
		result[id] = v
	}
	return result, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.ScoreStore = (*RedisStore)(nil)
