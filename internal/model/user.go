// Package model はドメインモデルを定義する。
package model

// User は登録ユーザーを表す。
// LoyaltyPointsはチェックアウト時に加算される非負の実数。
// JSONタグは永続化ストアの currentUser キーのスキーマと一致させる。
type User struct {
	ID            int     `json:"id"`
	Username      string  `json:"username"`
	LoyaltyPoints float64 `json:"loyaltyPoints"`
}
