package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/rushteam/scorekit/core"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS predictions (
  model      TEXT NOT NULL,
  row_id     TEXT NOT NULL,
  prediction REAL NOT NULL,
  updated_at INTEGER NOT NULL,
  expires_at INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (model, row_id)
);`

const upsertPrediction = `
INSERT INTO predictions (model, row_id, prediction, updated_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (model, row_id) DO UPDATE SET
  prediction = excluded.prediction,
  updated_at = excluded.updated_at,
  expires_at = excluded.expires_at`

// SQLStore 是 SQLite 实现的 ScoreStore，用于离线落库与审计。
//
// 表结构 predictions(model, row_id, prediction, updated_at, expires_at)，
// 每次 Save 在一个事务内完成 upsert。时间列为 Unix 秒，expires_at 为 0 表示不过期。
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore 打开 SQLite 数据库并建表。dsn 为空时使用 "scorekit.db"。
func NewSQLStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = "file:scorekit.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite 单写者；内存库每个连接是独立的库
	db.SetMaxOpenConns(1)

	s, err := NewSQLStoreWithDB(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStoreWithDB 使用已打开的 *sql.DB，确保表存在。
func NewSQLStoreWithDB(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, &core.DomainError{
			Module:  core.ModuleStore,
			Code:    core.ErrorCodeUnavailable,
			Message: "store: sqlite ping",
			Err:     err,
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Name() string { return "sqlite" }

func (s *SQLStore) Save(ctx context.Context, model string, data *core.ScoringData, ttl ...int) (err error) {
	if err := checkSave(model, data); err != nil {
		return err
	}
	now := s.now()
	var expires int64
	if d := ttlDuration(ttl); d > 0 {
		expires = now.Add(d).Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertPrediction)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, id := range data.Preds.Index {
		if _, err = stmt.ExecContext(ctx, model, id, data.Preds.Values[i], now.Unix(), expires); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", model, id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, model string, ids []string) (map[string]float64, error) {
	result := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT row_id, prediction FROM predictions
WHERE model = ? AND (expires_at = 0 OR expires_at > ?) AND row_id IN (` + placeholders + `)`
	args := make([]any, 0, len(ids)+2)
	args = append(args, model, s.now().Unix())
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			v  float64
		)
		if err := rows.Scan(&id, &v); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		result[id] = v
	}
	return result, rows.Err()
}

// DeleteModel 删除某个模型的全部预测
func (s *SQLStore) DeleteModel(ctx context.Context, model string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM predictions WHERE model = ?`, model)
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ core.ScoreStore = (*SQLStore)(nil)
