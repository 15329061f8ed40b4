// Package model はドメインモデルを定義する。
package model

import "time"

// Receipt はチェックアウト結果を表す。
// GrandTotalはロイヤルティ割引適用後の支払額、PointsEarnedはその5%。
type Receipt struct {
	ID              string    `json:"id"`
	UserID          int       `json:"user_id"`
	Total           float64   `json:"total"`
	LoyaltyDiscount float64   `json:"loyalty_discount"`
	GrandTotal      float64   `json:"grand_total"`
	PointsEarned    float64   `json:"points_earned"`
	CreatedAt       time.Time `json:"created_at"`
}
