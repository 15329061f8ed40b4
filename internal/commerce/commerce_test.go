package commerce

import (
	"errors"
	"testing"

	"github.com/hitoshi/shopman/internal/model"
)

// --- テストフィクスチャ ---

func testProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Laptop", BasePrice: 1200, CurrentPrice: 1200, Stock: 50, DemandScore: 1},
		{ID: 2, Name: "Smartphone", BasePrice: 800, CurrentPrice: 800, Stock: 100, DemandScore: 1},
		{ID: 3, Name: "Tablet", BasePrice: 400, CurrentPrice: 400, Stock: 75, DemandScore: 1},
	}
}

func testUsers() []model.User {
	return []model.User{
		{ID: 1, Username: "testuser", LoyaltyPoints: 0},
		{ID: 2, Username: "alice", LoyaltyPoints: 10},
	}
}

func newTestEngine() *Engine {
	return New(testProducts(), testUsers(), "testuser")
}

// apiErrorCode はerrorからAPIErrorコードを取り出す。APIErrorでなければ空文字。
func apiErrorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// --- 生成とセッション ---

// TestNew_DefaultUserLoggedIn はデフォルトユーザーがログイン済みで起動することを検証する。
func TestNew_DefaultUserLoggedIn(t *testing.T) {
	e := newTestEngine()

	u := e.CurrentUser()
	if u == nil {
		t.Fatal("expected default user to be logged in")
	}
	if u.Username != "testuser" {
		t.Errorf("username = %q, want %q", u.Username, "testuser")
	}
}

// TestNew_NoDefaultUser はデフォルトユーザー未指定時に未ログインで起動することを検証する。
func TestNew_NoDefaultUser(t *testing.T) {
	e := New(testProducts(), testUsers(), "")

	if u := e.CurrentUser(); u != nil {
		t.Errorf("expected no session, got user %q", u.Username)
	}
}

// TestLogin_KnownUser はユーザー名完全一致でログインできることを検証する。
func TestLogin_KnownUser(t *testing.T) {
	e := New(testProducts(), testUsers(), "")

	u, err := e.Login("alice")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if u.ID != 2 || u.LoyaltyPoints != 10 {
		t.Errorf("user = %+v, want ID=2 LoyaltyPoints=10", u)
	}

	current := e.CurrentUser()
	if current == nil || current.Username != "alice" {
		t.Errorf("session user = %+v, want alice", current)
	}
}

// TestLogin_UnknownUser は未知のユーザー名がUSER_NOT_FOUNDを返し、
// セッションを変更しないことを検証する。
func TestLogin_UnknownUser(t *testing.T) {
	e := newTestEngine()

	_, err := e.Login("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown username")
	}
	if code := apiErrorCode(err); code != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeUserNotFound)
	}

	// セッションは直前のまま
	if u := e.CurrentUser(); u == nil || u.Username != "testuser" {
		t.Errorf("session changed after failed login: %+v", u)
	}
}

// TestLogout_ClearsSessionAndCart はログアウトがセッションとカートの両方を
// 無条件にクリアし、冪等であることを検証する。
func TestLogout_ClearsSessionAndCart(t *testing.T) {
	e := newTestEngine()
	if err := e.AddToCart(1); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	e.Logout()

	if u := e.CurrentUser(); u != nil {
		t.Errorf("expected no session after logout, got %+v", u)
	}
	if cart := e.Cart(); len(cart) != 0 {
		t.Errorf("expected empty cart after logout, got %d lines", len(cart))
	}

	// 冪等性
	e.Logout()
	if u := e.CurrentUser(); u != nil {
		t.Errorf("second logout changed state: %+v", u)
	}
}

// --- カート操作 ---

// TestAddToCart_CreatesLineAndDecrementsStock は初回追加で数量1の行が作られ、
// 在庫がちょうど1減ることを検証する。
func TestAddToCart_CreatesLineAndDecrementsStock(t *testing.T) {
	e := newTestEngine()

	if err := e.AddToCart(1); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	cart := e.Cart()
	if len(cart) != 1 || cart[0].ProductID != 1 || cart[0].Quantity != 1 {
		t.Errorf("cart = %+v, want single line {1, 1}", cart)
	}

	p, err := e.Product(1)
	if err != nil {
		t.Fatalf("Product failed: %v", err)
	}
	if p.Stock != 49 {
		t.Errorf("stock = %d, want 49", p.Stock)
	}
}

// TestAddToCart_IncrementsExistingLine は既存行の数量が増え、行が増えないことを検証する。
func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 3; i++ {
		if err := e.AddToCart(2); err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
	}

	cart := e.Cart()
	if len(cart) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(cart))
	}
	if cart[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", cart[0].Quantity)
	}
}

// TestAddToCart_OutOfStock は在庫0の商品追加がOUT_OF_STOCKで失敗し、
// 状態を変更しないことを検証する。
func TestAddToCart_OutOfStock(t *testing.T) {
	products := []model.Product{
		{ID: 1, Name: "Sold out", BasePrice: 100, CurrentPrice: 100, Stock: 0},
	}
	e := New(products, testUsers(), "testuser")

	err := e.AddToCart(1)
	if code := apiErrorCode(err); code != model.ErrCodeOutOfStock {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeOutOfStock)
	}
	if cart := e.Cart(); len(cart) != 0 {
		t.Errorf("cart should stay empty, got %+v", cart)
	}
}

// TestAddToCart_UnknownProduct は未知の商品IDがPRODUCT_NOT_FOUNDで失敗することを検証する。
func TestAddToCart_UnknownProduct(t *testing.T) {
	e := newTestEngine()

	err := e.AddToCart(999)
	if code := apiErrorCode(err); code != model.ErrCodeProductNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeProductNotFound)
	}
}

// TestRemoveFromCart_DecrementsAndRestoresStock は削除で数量が1減り、
// 在庫が1戻ることを検証する。
func TestRemoveFromCart_DecrementsAndRestoresStock(t *testing.T) {
	e := newTestEngine()
	e.AddToCart(1)
	e.AddToCart(1)

	if err := e.RemoveFromCart(1); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}

	cart := e.Cart()
	if len(cart) != 1 || cart[0].Quantity != 1 {
		t.Errorf("cart = %+v, want single line quantity 1", cart)
	}

	p, _ := e.Product(1)
	if p.Stock != 49 {
		t.Errorf("stock = %d, want 49", p.Stock)
	}
}

// TestRemoveFromCart_RemovesLineAtZero は数量が0になる行が削除されることを検証する。
func TestRemoveFromCart_RemovesLineAtZero(t *testing.T) {
	e := newTestEngine()
	e.AddToCart(1)

	if err := e.RemoveFromCart(1); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}

	if cart := e.Cart(); len(cart) != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

// TestAddThenRemove_RestoresPriorStock は追加直後の削除が在庫を元の値に戻すことを検証する。
func TestAddThenRemove_RestoresPriorStock(t *testing.T) {
	e := newTestEngine()

	before, _ := e.Product(3)

	e.AddToCart(3)
	e.RemoveFromCart(3)

	after, _ := e.Product(3)
	if after.Stock != before.Stock {
		t.Errorf("stock = %d, want %d", after.Stock, before.Stock)
	}
	if cart := e.Cart(); len(cart) != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

// TestRemoveFromCart_NotInCart はカートにない商品の削除がNOT_IN_CARTで失敗することを検証する。
func TestRemoveFromCart_NotInCart(t *testing.T) {
	e := newTestEngine()

	err := e.RemoveFromCart(1)
	if code := apiErrorCode(err); code != model.ErrCodeNotInCart {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeNotInCart)
	}
}

// TestRemoveFromCart_UnknownProduct は未知の商品IDがPRODUCT_NOT_FOUNDで失敗することを検証する。
func TestRemoveFromCart_UnknownProduct(t *testing.T) {
	e := newTestEngine()

	err := e.RemoveFromCart(999)
	if code := apiErrorCode(err); code != model.ErrCodeProductNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeProductNotFound)
	}
}

// --- 管理者操作 ---

// TestAdminOverrideStock_SetsStockAndRecomputesPrice は在庫上書きが即座に
// 価格再計算を伴うことを検証する。
func TestAdminOverrideStock_SetsStockAndRecomputesPrice(t *testing.T) {
	e := newTestEngine()

	// 在庫10（<20）に上書き → 基準価格の5%引き
	if err := e.AdminOverrideStock(1, 10); err != nil {
		t.Fatalf("AdminOverrideStock failed: %v", err)
	}

	p, _ := e.Product(1)
	if p.Stock != 10 {
		t.Errorf("stock = %d, want 10", p.Stock)
	}
	if want := 1200 - 1200*0.05; p.CurrentPrice != want {
		t.Errorf("currentPrice = %v, want %v", p.CurrentPrice, want)
	}
}

// TestAdminOverrideStock_NegativeInput は負の在庫がINVALID_STOCKで拒否され、
// 在庫が変更されないことを検証する。
func TestAdminOverrideStock_NegativeInput(t *testing.T) {
	e := newTestEngine()
	before, _ := e.Product(1)

	err := e.AdminOverrideStock(1, -5)
	if code := apiErrorCode(err); code != model.ErrCodeInvalidStock {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeInvalidStock)
	}

	after, _ := e.Product(1)
	if after.Stock != before.Stock {
		t.Errorf("stock changed: %d -> %d", before.Stock, after.Stock)
	}
}

// TestAdminOverrideStock_UnknownProduct は未知の商品IDがPRODUCT_NOT_FOUNDで失敗することを検証する。
func TestAdminOverrideStock_UnknownProduct(t *testing.T) {
	e := newTestEngine()

	err := e.AdminOverrideStock(999, 10)
	if code := apiErrorCode(err); code != model.ErrCodeProductNotFound {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeProductNotFound)
	}
}

// --- 参照とスナップショット ---

// TestProducts_ReturnsOrderedCopy はカタログが表示順のコピーで返ることを検証する。
func TestProducts_ReturnsOrderedCopy(t *testing.T) {
	e := newTestEngine()

	products := e.Products()
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for i, wantID := range []int{1, 2, 3} {
		if products[i].ID != wantID {
			t.Errorf("products[%d].ID = %d, want %d", i, products[i].ID, wantID)
		}
	}

	// 返り値を書き換えてもエンジン内部には影響しない
	products[0].Stock = -999
	p, _ := e.Product(1)
	if p.Stock != 50 {
		t.Errorf("engine state mutated through returned copy: stock = %d", p.Stock)
	}
}

// TestHydrate_RestoresCartAndSession はスナップショットからカートとセッションが
// 復元されることを検証する。在庫は再減算されない（元アプリの挙動）。
func TestHydrate_RestoresCartAndSession(t *testing.T) {
	e := New(testProducts(), testUsers(), "")

	e.Hydrate(
		[]model.CartLine{{ProductID: 2, Quantity: 4}},
		&model.User{ID: 1, Username: "testuser", LoyaltyPoints: 7.5},
	)

	cart := e.Cart()
	if len(cart) != 1 || cart[0].ProductID != 2 || cart[0].Quantity != 4 {
		t.Errorf("cart = %+v, want [{2 4}]", cart)
	}

	u := e.CurrentUser()
	if u == nil || u.LoyaltyPoints != 7.5 {
		t.Errorf("session user = %+v, want loyaltyPoints 7.5", u)
	}

	// 在庫はシード値のまま
	p, _ := e.Product(2)
	if p.Stock != 100 {
		t.Errorf("stock = %d, want 100 (hydrate must not touch stock)", p.Stock)
	}
}

// TestHydrate_NilArgumentsKeepState はnil引数が対応する状態を変更しないことを検証する。
func TestHydrate_NilArgumentsKeepState(t *testing.T) {
	e := newTestEngine()
	e.AddToCart(1)

	e.Hydrate(nil, nil)

	if cart := e.Cart(); len(cart) != 1 {
		t.Errorf("cart changed by nil hydrate: %+v", cart)
	}
	if u := e.CurrentUser(); u == nil || u.Username != "testuser" {
		t.Errorf("session changed by nil hydrate: %+v", u)
	}
}
