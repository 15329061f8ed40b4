package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/shopman/internal/metrics"
	"github.com/hitoshi/shopman/internal/model"
)

// CheckoutServiceInterface はチェックアウトハンドラーが必要とするエンジンインターフェース。
type CheckoutServiceInterface interface {
	// Checkout はチェックアウトを実行し、レシートを返す。
	// 効果: ポイント加算、カート全消去、カタログ全体の価格再計算。
	Checkout() (*model.Receipt, error)
	// Cart は現在のカート行を返す（チェックアウト後は空）。
	Cart() []model.CartLine
	// CurrentUser はセッション中のユーザーを返す（ポイント加算済み）。
	CurrentUser() *model.User
}

// CheckoutHandler はチェックアウトのHTTPハンドラー。
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	saver     StateSaver
	collector metrics.MetricsCollector
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(service CheckoutServiceInterface, saver StateSaver, collector metrics.MetricsCollector) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		saver:     saver,
		collector: collector,
	}
}

// receiptResponse はレシートのAPIレスポンス。
type receiptResponse struct {
	ID              string    `json:"id"`
	UserID          int       `json:"user_id"`
	Total           float64   `json:"total"`
	LoyaltyDiscount float64   `json:"loyalty_discount"`
	GrandTotal      float64   `json:"grand_total"`
	PointsEarned    float64   `json:"points_earned"`
	CreatedAt       time.Time `json:"created_at"`
}

// Checkout はチェックアウトを実行する。
// POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.Checkout()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCheckout(receipt.GrandTotal, receipt.PointsEarned)

	// 空になったカートとポイント加算後のユーザーを保存する。
	saveCartSnapshot(r.Context(), h.saver, h.service.Cart())
	saveSessionSnapshot(r.Context(), h.saver, h.service.CurrentUser())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receiptResponse{
		ID:              receipt.ID,
		UserID:          receipt.UserID,
		Total:           receipt.Total,
		LoyaltyDiscount: receipt.LoyaltyDiscount,
		GrandTotal:      receipt.GrandTotal,
		PointsEarned:    receipt.PointsEarned,
		CreatedAt:       receipt.CreatedAt,
	})
}
