package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/scorekit/core"
)

// MemoryStore 是内存实现的 ScoreStore，用于测试/开发/原型。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*entry // model -> row id -> entry
	now  func() time.Time
}

type entry struct {
	value  float64
	expire time.Time // 零值表示不过期
}

func (e *entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && now.After(e.expire)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]*entry),
		now:  time.Now,
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Save(ctx context.Context, model string, data *core.ScoringData, ttl ...int) error {
	if err := checkSave(model, data); err != nil {
		return err
	}
	var expire time.Time
	if d := ttlDuration(ttl); d > 0 {
		expire = m.now().Add(d)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.data[model]
	if rows == nil {
		rows = make(map[string]*entry, data.Len())
		m.data[model] = rows
	}
	for i, id := range data.Preds.Index {
		rows[id] = &entry{value: data.Preds.Values[i], expire: expire}
	}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, model string, ids []string) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]float64, len(ids))
	rows := m.data[model]
	now := m.now()
	for _, id := range ids {
		e, ok := rows[id]
		if !ok || e.expired(now) {
			continue
		}
		result[id] = e.value
	}
	return result, nil
}

// Get 读取单个预测值，不存在或已过期返回 ErrNotFound
func (m *MemoryStore) Get(ctx context.Context, model, id string) (float64, error) {
	scores, err := m.Load(ctx, model, []string{id})
	if err != nil {
		return 0, err
	}
	v, ok := scores[id]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// Purge 清理已过期的条目，返回清理数量
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.now()
	for model, rows := range m.data {
		for id, e := range rows {
			if e.expired(now) {
				delete(rows, id)
				n++
			}
		}
		if len(rows) == 0 {
			delete(m.data, model)
		}
	}
	return n
}

func (m *MemoryStore) Close() error { return nil }

var _ core.ScoreStore = (*MemoryStore)(nil)
