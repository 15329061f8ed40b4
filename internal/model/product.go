// Package model はドメインモデルを定義する。
package model

// Product はカタログ上の商品を表す。
// BasePriceは不変の基準価格、CurrentPriceは価格調整ルールが導出する現在価格。
// DemandScoreは現状どのルールからも参照されないが、状態として保持する。
type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"imageUrl"`
	BasePrice    float64 `json:"basePrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Stock        int     `json:"stock"`
	DemandScore  int     `json:"demandScore"`
}
