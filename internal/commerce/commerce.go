// Package commerce はストアフロントの状態遷移エンジンを提供する。
// カタログ・カート・ユーザー・セッションの各テーブルをエンジンインスタンスが
// 排他的に所有し、固定のビジネスルールの下で同期的に更新する。
// 永続化は関知しない。呼び出し側がスナップショットの保存・復元を行う。
package commerce

import (
	"strconv"
	"sync"

	"github.com/hitoshi/shopman/internal/model"
)

// Engine はコマースエンジン本体。
// 元のアプリは単一アクター前提で排他制御を持たないため、
// HTTPサービスとして公開するにあたりエンジン全体を1つのミューテックスで守る。
type Engine struct {
	mu sync.Mutex

	// カタログ。表示順を保持するスライスとID索引の二重持ち。
	products     []*model.Product
	productIndex map[int]*model.Product

	// ユーザーディレクトリ。username と ID の両方で引ける。
	usersByName map[string]*model.User
	usersByID   map[int]*model.User

	// カート。1商品につき高々1行、追加順を保持する。
	cart []model.CartLine

	// アクティブセッションのユーザー。未ログイン時はnil。
	current *model.User
}

// New はシードデータからエンジンを生成する。
// defaultUsernameが登録ユーザーに存在する場合、そのユーザーを
// ログイン済みセッションとして初期化する（元アプリの起動時挙動）。
func New(products []model.Product, users []model.User, defaultUsername string) *Engine {
	e := &Engine{
		productIndex: make(map[int]*model.Product, len(products)),
		usersByName:  make(map[string]*model.User, len(users)),
		usersByID:    make(map[int]*model.User, len(users)),
	}

	for i := range products {
		p := products[i]
		e.products = append(e.products, &p)
		e.productIndex[p.ID] = &p
	}

	for i := range users {
		u := users[i]
		e.usersByName[u.Username] = &u
		e.usersByID[u.ID] = &u
	}

	if u, ok := e.usersByName[defaultUsername]; ok {
		e.current = u
	}

	return e
}

// Hydrate は外部ストアから読み出したスナップショットで状態を上書きする。
// 起動直後に1回だけ呼ぶことを想定している。nilの引数は対応する状態を変更しない。
// 元アプリ同様、カート復元時に在庫の再減算は行わない（商品はシード値のまま）。
func (e *Engine) Hydrate(cart []model.CartLine, user *model.User) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cart != nil {
		e.cart = make([]model.CartLine, len(cart))
		copy(e.cart, cart)
	}
	if user != nil {
		u := *user
		e.current = &u
	}
}

// Login はユーザー名の完全一致でユーザーを検索し、セッションに設定する。
// 見つからない場合はUSER_NOT_FOUNDを返し、セッションは変更しない。
func (e *Engine) Login(username string) (*model.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.usersByName[username]
	if !ok {
		return nil, model.NewUserNotFoundError(username)
	}

	e.current = u
	out := *u
	return &out, nil
}

// Logout はセッションを解除し、カートを無条件に破棄する。冪等。
func (e *Engine) Logout() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = nil
	e.cart = nil
}

// AddToCart は商品をカートに1個追加し、在庫を1減らす。
// 該当行がなければ数量1で新規作成する。価格の再計算はここでは行わない
// （価格はチェックアウトと在庫オーバーライドでのみ更新される）。
func (e *Engine) AddToCart(productID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.productIndex[productID]
	if !ok {
		return model.NewProductNotFoundError(productID)
	}
	if p.Stock <= 0 {
		return model.NewOutOfStockError(productID)
	}

	found := false
	for i := range e.cart {
		if e.cart[i].ProductID == productID {
			e.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		e.cart = append(e.cart, model.CartLine{ProductID: productID, Quantity: 1})
	}

	p.Stock--
	return nil
}

// RemoveFromCart はカートの該当行の数量を1減らし、在庫を1戻す。
// 数量が0になる場合は行ごと削除する。
func (e *Engine) RemoveFromCart(productID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.productIndex[productID]
	if !ok {
		return model.NewProductNotFoundError(productID)
	}

	idx := -1
	for i := range e.cart {
		if e.cart[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.NewNotInCartError(productID)
	}

	if e.cart[idx].Quantity > 1 {
		e.cart[idx].Quantity--
	} else {
		e.cart = append(e.cart[:idx], e.cart[idx+1:]...)
	}

	p.Stock++
	return nil
}

// AdminOverrideStock は在庫を指定値に直接上書きし、即座に価格を再計算する。
// 負の値はINVALID_STOCKとして拒否し、状態は変更しない。
func (e *Engine) AdminOverrideStock(productID, newStock int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if newStock < 0 {
		return model.NewInvalidStockError(strconv.Itoa(newStock))
	}

	p, ok := e.productIndex[productID]
	if !ok {
		return model.NewProductNotFoundError(productID)
	}

	p.Stock = newStock
	e.adjustPriceLocked(p)
	return nil
}

// Products はカタログ全体を表示順で返す。返り値は呼び出し側が自由に変更してよいコピー。
func (e *Engine) Products() []model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Product, len(e.products))
	for i, p := range e.products {
		out[i] = *p
	}
	return out
}

// Product は指定IDの商品を返す。見つからない場合はPRODUCT_NOT_FOUNDを返す。
func (e *Engine) Product(productID int) (*model.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.productIndex[productID]
	if !ok {
		return nil, model.NewProductNotFoundError(productID)
	}
	out := *p
	return &out, nil
}

// Cart は現在のカート行を追加順で返す。返り値はコピー。
func (e *Engine) Cart() []model.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.CartLine, len(e.cart))
	copy(out, e.cart)
	return out
}

// CurrentUser はセッション中のユーザーを返す。未ログイン時はnil。返り値はコピー。
func (e *Engine) CurrentUser() *model.User {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil
	}
	out := *e.current
	return &out
}
