package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopman/internal/model"
)

// ProductServiceInterface は商品ハンドラーが必要とするエンジンインターフェース。
type ProductServiceInterface interface {
	// Products はカタログ全体を表示順で返す。
	Products() []model.Product
	// Product は指定IDの商品を返す。
	Product(productID int) (*model.Product, error)
}

// ProductHandler はカタログ参照のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// productResponse は商品情報のAPIレスポンス。
type productResponse struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	BasePrice    float64 `json:"base_price"`
	CurrentPrice float64 `json:"current_price"`
	Stock        int     `json:"stock"`
}

// ListProducts はカタログ全体を返す。
// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.Products()

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(&p)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// GetProduct は商品詳細を返す。
// GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.service.Product(productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProductResponse(p))
}

// toProductResponse はmodel.ProductからAPIレスポンスに変換する。
func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		BasePrice:    p.BasePrice,
		CurrentPrice: p.CurrentPrice,
		Stock:        p.Stock,
	}
}

// parseProductID はURLパラメータの商品IDを解析する。
// 不正な場合はエラーレスポンスを書き込み、falseを返す。
func parseProductID(w http.ResponseWriter, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "商品IDは整数で指定してください: " + raw,
			Category: "validation",
			Action:   "URLの商品IDを確認してください。",
		})
		return 0, false
	}
	return id, true
}
