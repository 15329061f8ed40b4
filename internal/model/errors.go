// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, commerce, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeOutOfStock      = "OUT_OF_STOCK"
	ErrCodeNotInCart       = "NOT_IN_CART"
	ErrCodeNoSession       = "NO_SESSION"
	ErrCodeEmptyCart       = "EMPTY_CART"
	ErrCodeInvalidStock    = "INVALID_STOCK"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
)

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID int) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %d", productID),
		Category: "commerce",
		Action:   "商品IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", username),
		Category: "auth",
		Action:   "ユーザー名を確認してください。",
	}
}

// NewOutOfStockError は在庫切れエラーを生成する。
func NewOutOfStockError(productID int) *APIError {
	return &APIError{
		Code:     ErrCodeOutOfStock,
		Message:  fmt.Sprintf("商品の在庫がありません: %d", productID),
		Category: "commerce",
		Action:   "在庫が補充されるまでお待ちください。",
	}
}

// NewNotInCartError はカート未登録エラーを生成する。
func NewNotInCartError(productID int) *APIError {
	return &APIError{
		Code:     ErrCodeNotInCart,
		Message:  fmt.Sprintf("商品はカートに入っていません: %d", productID),
		Category: "commerce",
		Action:   "カートの内容を確認してください。",
	}
}

// NewNoSessionError は未ログインエラーを生成する。
func NewNoSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSession,
		Message:  "ログインしていません。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewEmptyCartError は空カートエラーを生成する。
func NewEmptyCartError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyCart,
		Message:  "カートが空です。",
		Category: "commerce",
		Action:   "商品をカートに追加してからチェックアウトしてください。",
	}
}

// NewInvalidStockError は不正な在庫値エラーを生成する。
func NewInvalidStockError(input string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStock,
		Message:  fmt.Sprintf("不正な在庫値です: %s", input),
		Category: "validation",
		Action:   "在庫には0以上の整数を指定してください。",
	}
}
