package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopman/internal/metrics"
	"github.com/hitoshi/shopman/internal/model"
)

// AdminServiceInterface は管理ハンドラーが必要とするエンジンインターフェース。
type AdminServiceInterface interface {
	// AdminOverrideStock は在庫を指定値に上書きし、即座に価格を再計算する。
	AdminOverrideStock(productID, newStock int) error
	// Product は指定IDの商品を返す（上書き結果の確認用）。
	Product(productID int) (*model.Product, error)
}

// AdminHandler は管理者操作のHTTPハンドラー。
type AdminHandler struct {
	service   AdminServiceInterface
	collector metrics.MetricsCollector
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface, collector metrics.MetricsCollector) *AdminHandler {
	return &AdminHandler{
		service:   service,
		collector: collector,
	}
}

// overrideStockRequest は在庫上書きリクエストのボディ。
// 数値以外を検出するためポインタで受ける。
type overrideStockRequest struct {
	Stock *int `json:"stock"`
}

// OverrideStock は商品の在庫を上書きする。
// PUT /api/admin/products/{id}/stock
func (h *AdminHandler) OverrideStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req overrideStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stock == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidStockError("数値ではありません"))
		return
	}

	if err := h.service.AdminOverrideStock(productID, *req.Stock); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordStockOverride()

	// 上書き後の商品（再計算済み価格を含む）を返す。
	p, err := h.service.Product(productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProductResponse(p))
}
