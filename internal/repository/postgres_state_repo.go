package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/shopman/internal/model"
)

// PostgresStateRepo はPostgreSQLのapp_stateテーブルを使用した状態リポジトリ。
// 1キー1行のキーバリュー構造で、保存はアップサート（last write wins）。
type PostgresStateRepo struct {
	db *sql.DB
}

// NewPostgresStateRepo はPostgresStateRepoを生成する。
func NewPostgresStateRepo(db *sql.DB) *PostgresStateRepo {
	return &PostgresStateRepo{db: db}
}

// LoadCart は保存済みカートを取得する。未保存の場合はnilを返す。
func (r *PostgresStateRepo) LoadCart(ctx context.Context) ([]model.CartLine, error) {
	raw, err := r.loadValue(ctx, KeyCart)
	if err != nil || raw == nil {
		return nil, err
	}

	var cart []model.CartLine
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	return cart, nil
}

// SaveCart はカートを保存する。空カートも空配列として保存する。
func (r *PostgresStateRepo) SaveCart(ctx context.Context, cart []model.CartLine) error {
	if cart == nil {
		cart = []model.CartLine{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return r.saveValue(ctx, KeyCart, raw)
}

// LoadSession は保存済みセッションユーザーを取得する。未保存の場合はnilを返す。
func (r *PostgresStateRepo) LoadSession(ctx context.Context) (*model.User, error) {
	raw, err := r.loadValue(ctx, KeyCurrentUser)
	if err != nil || raw == nil {
		return nil, err
	}

	user := &model.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	return user, nil
}

// SaveSession はセッションユーザーを保存する。nilの場合はキーを削除する。
func (r *PostgresStateRepo) SaveSession(ctx context.Context, user *model.User) error {
	if user == nil {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM app_state WHERE key = $1`, KeyCurrentUser)
		if err != nil {
			return fmt.Errorf("failed to delete session key: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.saveValue(ctx, KeyCurrentUser, raw)
}

// Ping はデータベースへの到達性を確認する。
func (r *PostgresStateRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresStateRepo) loadValue(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = $1`, key,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state key %s: %w", key, err)
	}
	return raw, nil
}

func (r *PostgresStateRepo) saveValue(ctx context.Context, key string, raw []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save state key %s: %w", key, err)
	}
	return nil
}

// compile-time interface check
var _ StateRepository = (*PostgresStateRepo)(nil)
