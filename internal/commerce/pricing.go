package commerce

import "github.com/hitoshi/shopman/internal/model"

// 価格調整ルールの定数。
const (
	// 需要ティアの閾値。現在カートに入っている数量で判定する（購入履歴ではない）。
	demandTier1Threshold = 5  // 超過で+10%
	demandTier2Threshold = 10 // 超過で+30%（ティア1を上書き、加算ではない）

	// 在庫による上書き。需要サーチャージより後に適用され、無条件に勝つ。
	lowStockThreshold  = 20 // 未満で基準価格の5%引き
	highStockThreshold = 50 // 超過で基準価格に戻す
)

// AdjustPrice は指定商品のCurrentPriceを価格調整ルールで再計算する。
// 同じカート・在庫に対しては決定的かつ冪等。未知のIDは何もしない。
func (e *Engine) AdjustPrice(productID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.productIndex[productID]; ok {
		e.adjustPriceLocked(p)
	}
}

// adjustPriceLocked は価格調整ルール本体。e.muを保持した状態で呼ぶこと。
//
// 代入順序がルールそのものである点に注意。需要サーチャージを計算した後、
// 在庫分岐が結果を無条件に上書きするため、低在庫・高在庫の商品では
// 需要サーチャージは黙って破棄される。また在庫が[20,50]かつ需要ティア0の
// 場合は直前の価格がそのまま残る。一見バグめいた挙動だが元実装の仕様であり、
// 意図的に忠実へ再現している。
func (e *Engine) adjustPriceLocked(p *model.Product) {
	newPrice := p.CurrentPrice
	demandAdjustment := 0

	// quantityBought は現在カートに入っている該当商品の合計数量。
	quantityBought := 0
	for _, line := range e.cart {
		if line.ProductID == p.ID {
			quantityBought += line.Quantity
		}
	}

	if quantityBought > demandTier1Threshold {
		demandAdjustment = 1
	}
	if quantityBought > demandTier2Threshold {
		demandAdjustment = 3
	}

	if demandAdjustment > 0 {
		newPrice = p.BasePrice + p.BasePrice*(float64(demandAdjustment)/10)
	}

	if p.Stock < lowStockThreshold {
		newPrice = p.BasePrice - p.BasePrice*0.05
	}
	if p.Stock > highStockThreshold {
		newPrice = p.BasePrice
	}

	p.CurrentPrice = newPrice
}
