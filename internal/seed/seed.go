// Package seed はエンジン起動時の初期データを提供する。
// 商品とユーザーは起動時に固定データから投入され、実行時の作成・削除操作は存在しない。
// 組み込みデフォルトに加えて、YAMLファイルによる差し替えに対応する。
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/shopman/internal/model"
)

// Data はエンジンに投入する初期データ一式。
type Data struct {
	Products []model.Product
	Users    []model.User
	// DefaultUsername は起動時にログイン済みとして扱うユーザー。
	// 空の場合は未ログインで起動する。
	DefaultUsername string
}

// --- YAMLファイル表現 ---

// seedFile はYAMLシードファイルのスキーマ。
// currentPriceは指定不可で、常にbasePriceから開始する。
type seedFile struct {
	Products []seedProduct `yaml:"products"`
	Users    []seedUser    `yaml:"users"`
	Default  string        `yaml:"default_username"`
}

type seedProduct struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	ImageURL    string  `yaml:"image_url"`
	BasePrice   float64 `yaml:"base_price"`
	Stock       int     `yaml:"stock"`
	DemandScore int     `yaml:"demand_score"`
}

type seedUser struct {
	ID            int     `yaml:"id"`
	Username      string  `yaml:"username"`
	LoyaltyPoints float64 `yaml:"loyalty_points"`
}

// Default は組み込みの初期データを返す。
func Default() Data {
	return Data{
		Products: []model.Product{
			{
				ID:           1,
				Name:         "Laptop",
				Description:  "High-performance laptop",
				ImageURL:     "https://placekitten.com/200/300",
				BasePrice:    1200,
				CurrentPrice: 1200,
				Stock:        50,
				DemandScore:  1,
			},
			{
				ID:           2,
				Name:         "Smartphone",
				Description:  "Latest smartphone model",
				ImageURL:     "https://placekitten.com/200/301",
				BasePrice:    800,
				CurrentPrice: 800,
				Stock:        100,
				DemandScore:  1,
			},
			{
				ID:           3,
				Name:         "Tablet",
				Description:  "Portable tablet device",
				ImageURL:     "https://placekitten.com/200/302",
				BasePrice:    400,
				CurrentPrice: 400,
				Stock:        75,
				DemandScore:  1,
			},
		},
		Users: []model.User{
			{ID: 1, Username: "testuser", LoyaltyPoints: 0},
		},
		DefaultUsername: "testuser",
	}
}

// LoadFile はYAMLファイルから初期データを読み込み、検証して返す。
func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed file: %w", err)
	}

	data := Data{DefaultUsername: file.Default}
	for _, p := range file.Products {
		data.Products = append(data.Products, model.Product{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			ImageURL:     p.ImageURL,
			BasePrice:    p.BasePrice,
			CurrentPrice: p.BasePrice,
			Stock:        p.Stock,
			DemandScore:  p.DemandScore,
		})
	}
	for _, u := range file.Users {
		data.Users = append(data.Users, model.User{
			ID:            u.ID,
			Username:      u.Username,
			LoyaltyPoints: u.LoyaltyPoints,
		})
	}

	if err := Validate(data); err != nil {
		return Data{}, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return data, nil
}

// Validate は初期データの整合性を検証する。
// 商品ID・ユーザーID・ユーザー名の一意性、価格・在庫・ポイントの非負、
// DefaultUsernameの実在を確認する。
func Validate(data Data) error {
	if len(data.Products) == 0 {
		return fmt.Errorf("seed must contain at least one product")
	}

	productIDs := make(map[int]struct{}, len(data.Products))
	for _, p := range data.Products {
		if _, dup := productIDs[p.ID]; dup {
			return fmt.Errorf("duplicate product id: %d", p.ID)
		}
		productIDs[p.ID] = struct{}{}

		if p.Name == "" {
			return fmt.Errorf("product %d: name must not be empty", p.ID)
		}
		if p.BasePrice < 0 || p.CurrentPrice < 0 {
			return fmt.Errorf("product %d: prices must be non-negative", p.ID)
		}
		if p.Stock < 0 {
			return fmt.Errorf("product %d: stock must be non-negative", p.ID)
		}
	}

	userIDs := make(map[int]struct{}, len(data.Users))
	usernames := make(map[string]struct{}, len(data.Users))
	for _, u := range data.Users {
		if _, dup := userIDs[u.ID]; dup {
			return fmt.Errorf("duplicate user id: %d", u.ID)
		}
		userIDs[u.ID] = struct{}{}

		if u.Username == "" {
			return fmt.Errorf("user %d: username must not be empty", u.ID)
		}
		if _, dup := usernames[u.Username]; dup {
			return fmt.Errorf("duplicate username: %s", u.Username)
		}
		usernames[u.Username] = struct{}{}

		if u.LoyaltyPoints < 0 {
			return fmt.Errorf("user %d: loyalty points must be non-negative", u.ID)
		}
	}

	if data.DefaultUsername != "" {
		if _, ok := usernames[data.DefaultUsername]; !ok {
			return fmt.Errorf("default username %q is not a registered user", data.DefaultUsername)
		}
	}

	return nil
}
