package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/evno/internal/model"
)

// Source はスナップショット構築に必要なカタログデータの読み出しインターフェース。
// repository.PostgresCatalogRepoの部分集合として定義する。
type Source interface {
	// ListCategories は全カテゴリをデータセット順で返す。
	ListCategories(ctx context.Context) ([]model.Category, error)
	// ListRegions は州名→都市リストの地域テーブル全体を返す。
	ListRegions(ctx context.Context) (map[string][]string, error)
	// ListVendors は全ベンダーをデータセット順で返す。
	ListVendors(ctx context.Context) ([]model.Vendor, error)
}

// Load はカタログデータを全件読み出してスナップショットを構築する。
// 起動時とベンダー登録後のリロードで使用する。
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの読み出しに失敗: %w", err)
	}

	regions, err := src.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("地域テーブルの読み出しに失敗: %w", err)
	}

	vendors, err := src.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("ベンダーの読み出しに失敗: %w", err)
	}

	return NewSnapshot(categories, regions, vendors), nil
}
