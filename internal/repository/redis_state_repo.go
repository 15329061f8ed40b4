package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/hitoshi/shopman/internal/model"
)

// RedisStateRepo はRedisを使用した状態リポジトリ。
// 2キーのキーバリュー保存という要件に対する最小のバックエンド。
type RedisStateRepo struct {
	client *redis.Client
}

// NewRedisStateRepo はRedisStateRepoを生成する。
func NewRedisStateRepo(client *redis.Client) *RedisStateRepo {
	return &RedisStateRepo{client: client}
}

// LoadCart は保存済みカートを取得する。未保存の場合はnilを返す。
func (r *RedisStateRepo) LoadCart(ctx context.Context) ([]model.CartLine, error) {
	raw, err := r.client.Get(ctx, KeyCart).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state key %s: %w", KeyCart, err)
	}

	var cart []model.CartLine
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	return cart, nil
}

// SaveCart はカートを保存する。空カートも空配列として保存する。
func (r *RedisStateRepo) SaveCart(ctx context.Context, cart []model.CartLine) error {
	if cart == nil {
		cart = []model.CartLine{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, KeyCart, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state key %s: %w", KeyCart, err)
	}
	return nil
}

// LoadSession は保存済みセッションユーザーを取得する。未保存の場合はnilを返す。
func (r *RedisStateRepo) LoadSession(ctx context.Context) (*model.User, error) {
	raw, err := r.client.Get(ctx, KeyCurrentUser).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state key %s: %w", KeyCurrentUser, err)
	}

	user := &model.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	return user, nil
}

// SaveSession はセッションユーザーを保存する。nilの場合はキーを削除する。
func (r *RedisStateRepo) SaveSession(ctx context.Context, user *model.User) error {
	if user == nil {
		if err := r.client.Del(ctx, KeyCurrentUser).Err(); err != nil {
			return fmt.Errorf("failed to delete session key: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, KeyCurrentUser, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state key %s: %w", KeyCurrentUser, err)
	}
	return nil
}

// Ping はRedisへの到達性を確認する。
func (r *RedisStateRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// compile-time interface check
var _ StateRepository = (*RedisStateRepo)(nil)
