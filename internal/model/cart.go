// Package model はドメインモデルを定義する。
package model

// CartLine はカート内の1商品と数量の組を表す。
// 1商品につき高々1行で、数量は常に正。数量が0になる操作は行ごと削除する。
// JSONタグは永続化ストアの cart キーのスキーマと一致させる。
type CartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}
