package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/shopman/internal/model"
)

// SessionServiceInterface はセッションハンドラーが必要とするエンジンインターフェース。
type SessionServiceInterface interface {
	// Login はユーザー名の完全一致でユーザーを検索し、セッションに設定する。
	Login(username string) (*model.User, error)
	// Logout はセッションを解除し、カートを破棄する。冪等。
	Logout()
	// CurrentUser はセッション中のユーザーを返す。未ログイン時はnil。
	CurrentUser() *model.User
	// Cart は現在のカート行を返す。
	Cart() []model.CartLine
}

// StateSaver は変更後の状態スナップショットを外部ストアへ保存するインターフェース。
// 保存はベストエフォートで、失敗してもエンジンの状態は有効なまま。
type StateSaver interface {
	SaveCart(ctx context.Context, cart []model.CartLine) error
	SaveSession(ctx context.Context, user *model.User) error
}

// SessionHandler はログイン・ログアウトのHTTPハンドラー。
type SessionHandler struct {
	service SessionServiceInterface
	saver   StateSaver
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface, saver StateSaver) *SessionHandler {
	return &SessionHandler{
		service: service,
		saver:   saver,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID            int     `json:"id"`
	Username      string  `json:"username"`
	LoyaltyPoints float64 `json:"loyalty_points"`
}

// Login はログインを処理する。
// POST /auth/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "ユーザー名が空です。",
			Category: "validation",
			Action:   "ユーザー名を入力してください。",
		})
		return
	}

	user, err := h.service.Login(req.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	saveSessionSnapshot(r.Context(), h.saver, user)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Logout はログアウトを処理する。セッションとカートの両方をクリアする。
// POST /auth/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout()

	saveSessionSnapshot(r.Context(), h.saver, nil)
	saveCartSnapshot(r.Context(), h.saver, h.service.Cart())

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッションユーザーを返す。
// GET /auth/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.service.CurrentUser()
	if user == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewNoSessionError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Username:      user.Username,
		LoyaltyPoints: user.LoyaltyPoints,
	}
}

// saveSessionSnapshot はセッションスナップショットを保存する。
// 失敗は警告ログのみで、リクエスト自体は成功として扱う。
func saveSessionSnapshot(ctx context.Context, saver StateSaver, user *model.User) {
	if err := saver.SaveSession(ctx, user); err != nil {
		slog.Warn("failed to persist session snapshot", slog.String("error", err.Error()))
	}
}

// saveCartSnapshot はカートスナップショットを保存する。
// 失敗は警告ログのみで、リクエスト自体は成功として扱う。
func saveCartSnapshot(ctx context.Context, saver StateSaver, cart []model.CartLine) {
	if err := saver.SaveCart(ctx, cart); err != nil {
		slog.Warn("failed to persist cart snapshot", slog.String("error", err.Error()))
	}
}
