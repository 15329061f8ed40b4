package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopman/internal/model"
)

// errTest は保存失敗系テストで使用する汎用エラー。
var errTest = errors.New("test error")

// mockCommerceService は関数フィールドで挙動を差し替えられるエンジンモック。
type mockCommerceService struct {
	LoginFunc                    func(username string) (*model.User, error)
	LogoutFunc                   func()
	CurrentUserFunc              func() *model.User
	CartFunc                     func() []model.CartLine
	ProductsFunc                 func() []model.Product
	ProductFunc                  func(productID int) (*model.Product, error)
	AddToCartFunc                func(productID int) error
	RemoveFromCartFunc           func(productID int) error
	CalculateTotalFunc           func() float64
	CalculateLoyaltyDiscountFunc func() float64
	CheckoutFunc                 func() (*model.Receipt, error)
	AdminOverrideStockFunc       func(productID, newStock int) error
}

func (m *mockCommerceService) Login(username string) (*model.User, error) {
	return m.LoginFunc(username)
}

func (m *mockCommerceService) Logout() {
	if m.LogoutFunc != nil {
		m.LogoutFunc()
	}
}

func (m *mockCommerceService) CurrentUser() *model.User {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc()
	}
	return nil
}

func (m *mockCommerceService) Cart() []model.CartLine {
	if m.CartFunc != nil {
		return m.CartFunc()
	}
	return nil
}

func (m *mockCommerceService) Products() []model.Product {
	return m.ProductsFunc()
}

func (m *mockCommerceService) Product(productID int) (*model.Product, error) {
	return m.ProductFunc(productID)
}

func (m *mockCommerceService) AddToCart(productID int) error {
	return m.AddToCartFunc(productID)
}

func (m *mockCommerceService) RemoveFromCart(productID int) error {
	return m.RemoveFromCartFunc(productID)
}

func (m *mockCommerceService) CalculateTotal() float64 {
	if m.CalculateTotalFunc != nil {
		return m.CalculateTotalFunc()
	}
	return 0
}

func (m *mockCommerceService) CalculateLoyaltyDiscount() float64 {
	if m.CalculateLoyaltyDiscountFunc != nil {
		return m.CalculateLoyaltyDiscountFunc()
	}
	return 0
}

func (m *mockCommerceService) Checkout() (*model.Receipt, error) {
	return m.CheckoutFunc()
}

func (m *mockCommerceService) AdminOverrideStock(productID, newStock int) error {
	return m.AdminOverrideStockFunc(productID, newStock)
}

// mockStateSaver は保存呼び出しを記録するStateSaverモック。
type mockStateSaver struct {
	SavedCarts    [][]model.CartLine
	SavedSessions []*model.User
	CartErr       error
	SessionErr    error
}

func (m *mockStateSaver) SaveCart(ctx context.Context, cart []model.CartLine) error {
	m.SavedCarts = append(m.SavedCarts, cart)
	return m.CartErr
}

func (m *mockStateSaver) SaveSession(ctx context.Context, user *model.User) error {
	m.SavedSessions = append(m.SavedSessions, user)
	return m.SessionErr
}

// mockCollector は呼び出し回数を記録するメトリクスコレクターモック。
type mockCollector struct {
	CartAdds       int
	CartRemoves    int
	Checkouts      int
	StockOverrides int
	HTTPStatuses   []int
}

func (m *mockCollector) RecordCartAdd()              { m.CartAdds++ }
func (m *mockCollector) RecordCartRemove()           { m.CartRemoves++ }
func (m *mockCollector) RecordCheckout(_, _ float64) { m.Checkouts++ }
func (m *mockCollector) RecordStockOverride()        { m.StockOverrides++ }

func (m *mockCollector) RecordHTTPStatus(statusCode int) {
	m.HTTPStatuses = append(m.HTTPStatuses, statusCode)
}

// newRequestWithID はchiのURLパラメータ{id}を設定したリクエストを生成する。
func newRequestWithID(method, target, id string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
