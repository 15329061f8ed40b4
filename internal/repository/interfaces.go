// Package repository は状態スナップショットの永続化境界を提供する。
// 永続化されるのは cart と currentUser の2キーのみで、値はJSONで直列化する。
// エンジン自体は永続化を関知せず、プレゼンテーション層が変更のたびに保存する。
package repository

import (
	"context"

	"github.com/hitoshi/shopman/internal/model"
)

// 永続化ストアのキー。元アプリのlocalStorageキーと同一。
const (
	KeyCart        = "cart"
	KeyCurrentUser = "currentUser"
)

// StateRepository は状態スナップショットの読み書きインターフェース。
// Loadは未保存の場合エラーなしでnilを返す。SaveSessionにnilを渡すと
// セッションキーを削除する（ログアウトの永続化）。
type StateRepository interface {
	LoadCart(ctx context.Context) ([]model.CartLine, error)
	SaveCart(ctx context.Context, cart []model.CartLine) error
	LoadSession(ctx context.Context) (*model.User, error)
	SaveSession(ctx context.Context, user *model.User) error

	// Ping はストアへの到達性を確認する。ヘルスチェックで使用する。
	Ping(ctx context.Context) error
}
