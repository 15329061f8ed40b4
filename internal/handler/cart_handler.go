package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopman/internal/metrics"
	"github.com/hitoshi/shopman/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするエンジンインターフェース。
type CartServiceInterface interface {
	// AddToCart は商品をカートに1個追加し、在庫を1減らす。
	AddToCart(productID int) error
	// RemoveFromCart はカートの該当行の数量を1減らし、在庫を1戻す。
	RemoveFromCart(productID int) error
	// Cart は現在のカート行を返す。
	Cart() []model.CartLine
	// CalculateTotal はカート合計を返す。
	CalculateTotal() float64
	// CalculateLoyaltyDiscount はロイヤルティ割引額を返す。
	CalculateLoyaltyDiscount() float64
}

// CartHandler はカート操作のHTTPハンドラー。
// 各変更操作の後にカートスナップショットを外部ストアへ保存する。
type CartHandler struct {
	service   CartServiceInterface
	saver     StateSaver
	collector metrics.MetricsCollector
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface, saver StateSaver, collector metrics.MetricsCollector) *CartHandler {
	return &CartHandler{
		service:   service,
		saver:     saver,
		collector: collector,
	}
}

// addToCartRequest はカート追加リクエストのボディ。
type addToCartRequest struct {
	ProductID int `json:"product_id"`
}

// cartLineResponse はカート1行のAPIレスポンス。
type cartLineResponse struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// cartResponse はカート全体と導出値のAPIレスポンス。
type cartResponse struct {
	Items           []cartLineResponse `json:"items"`
	Total           float64            `json:"total"`
	LoyaltyDiscount float64            `json:"loyalty_discount"`
	GrandTotal      float64            `json:"grand_total"`
}

// GetCart は現在のカートと合計金額を返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toCartResponse())
}

// AddItem は商品をカートに1個追加する。
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if err := h.service.AddToCart(req.ProductID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartAdd()
	saveCartSnapshot(r.Context(), h.saver, h.service.Cart())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toCartResponse())
}

// RemoveItem はカートの商品を1個取り除く。
// DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.RemoveFromCart(productID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartRemove()
	saveCartSnapshot(r.Context(), h.saver, h.service.Cart())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toCartResponse())
}

// toCartResponse は現在のカート状態からAPIレスポンスを組み立てる。
func (h *CartHandler) toCartResponse() cartResponse {
	lines := h.service.Cart()
	items := make([]cartLineResponse, len(lines))
	for i, line := range lines {
		items[i] = cartLineResponse{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	total := h.service.CalculateTotal()
	discount := h.service.CalculateLoyaltyDiscount()

	return cartResponse{
		Items:           items,
		Total:           total,
		LoyaltyDiscount: discount,
		GrandTotal:      total - discount,
	}
}

// --- ヘルパー関数 ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はエンジンから返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeProductNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeOutOfStock, model.ErrCodeNotInCart, model.ErrCodeEmptyCart:
		return http.StatusConflict
	case model.ErrCodeNoSession:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidStock, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
