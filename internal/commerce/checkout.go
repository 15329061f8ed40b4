package commerce

import (
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/shopman/internal/model"
)

// loyaltyRate はロイヤルティ割引率および還元率（支払額の5%）。
const loyaltyRate = 0.05

// CalculateTotal はカート全行の currentPrice × quantity の合計を返す。
// 存在しない商品を参照する行はスキップする（データモデル上は起こらないが防御的に）。
func (e *Engine) CalculateTotal() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.totalLocked()
}

// CalculateLoyaltyDiscount はロイヤルティ割引額を返す。
// 未ログイン時は0。ログイン中ユーザーのポイントが正ならカート合計の5%、それ以外は0。
// 閾値は「正のポイントを持つか」のみで、段階スケールは存在しない。
func (e *Engine) CalculateLoyaltyDiscount() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loyaltyDiscountLocked()
}

// Checkout はチェックアウトを実行し、レシートを返す。
// 前提条件: ログイン済み（でなければNO_SESSION）、カート非空（でなければEMPTY_CART）。
// 効果は順に: 支払額の算出、ポイント加算とディレクトリへの書き戻し、カートの全消去、
// カタログ全商品の価格再計算。再計算は空になったカートに対して行われるため、
// チェックアウト前の需要サーチャージはこの時点で消える。
// トランザクション的なロールバックは存在しない。
func (e *Engine) Checkout() (*model.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, model.NewNoSessionError()
	}
	if len(e.cart) == 0 {
		return nil, model.NewEmptyCartError()
	}

	total := e.totalLocked()
	discount := e.loyaltyDiscountLocked()
	grandTotal := total - discount
	points := grandTotal * loyaltyRate

	// ポイントを加算し、更新後のユーザーをディレクトリに書き戻す。
	e.current.LoyaltyPoints += points
	e.usersByID[e.current.ID] = e.current
	e.usersByName[e.current.Username] = e.current

	e.cart = nil

	// カート商品だけでなくカタログ全体を再計算する。
	for _, p := range e.products {
		e.adjustPriceLocked(p)
	}

	return &model.Receipt{
		ID:              uuid.NewString(),
		UserID:          e.current.ID,
		Total:           total,
		LoyaltyDiscount: discount,
		GrandTotal:      grandTotal,
		PointsEarned:    points,
		CreatedAt:       time.Now(),
	}, nil
}

// totalLocked はカート合計を計算する。e.muを保持した状態で呼ぶこと。
func (e *Engine) totalLocked() float64 {
	total := 0.0
	for _, line := range e.cart {
		if p, ok := e.productIndex[line.ProductID]; ok {
			total += p.CurrentPrice * float64(line.Quantity)
		}
	}
	return total
}

// loyaltyDiscountLocked はロイヤルティ割引額を計算する。e.muを保持した状態で呼ぶこと。
func (e *Engine) loyaltyDiscountLocked() float64 {
	if e.current == nil {
		return 0
	}
	if e.current.LoyaltyPoints > 0 {
		return e.totalLocked() * loyaltyRate
	}
	return 0
}
