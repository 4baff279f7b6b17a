// Package catalog はカテゴリ・地域・ベンダーの静的カタログと、
// その上での検索（リゾルバー）を提供する。
// カタログは起動時に1回構築されるイミュータブルなスナップショットであり、
// 全クエリは副作用なしで並行実行できる。
package catalog

import (
	"sort"

	"github.com/hitoshi/evno/internal/model"
)

// Snapshot はある時点のカタログ全体を保持するイミュータブルなデータ構造。
// 構築時に全入力をコピーするため、元データの後変更はスナップショットに影響しない。
type Snapshot struct {
	categories []model.Category
	regions    map[string][]string
	vendors    []model.Vendor
}

// NewSnapshot はカタログのスナップショットを構築する。
// categoriesとvendorsはデータセット順を保持したままコピーされる。
// regionsは州名→都市リストの参照テーブルで、都市リストもコピーされる。
func NewSnapshot(categories []model.Category, regions map[string][]string, vendors []model.Vendor) *Snapshot {
	s := &Snapshot{
		categories: make([]model.Category, len(categories)),
		regions:    make(map[string][]string, len(regions)),
		vendors:    make([]model.Vendor, len(vendors)),
	}
	copy(s.categories, categories)
	for state, cities := range regions {
		cs := make([]string, len(cities))
		copy(cs, cities)
		s.regions[state] = cs
	}
	for i, v := range vendors {
		s.vendors[i] = copyVendor(v)
	}
	return s
}

// Categories はカテゴリ一覧をデータセット順で返す。返り値はコピー。
func (s *Snapshot) Categories() []model.Category {
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// CategoryByName は名前が一致するカテゴリを返す。見つからない場合はnilを返す。
func (s *Snapshot) CategoryByName(name string) *model.Category {
	for i := range s.categories {
		if s.categories[i].Name == name {
			c := s.categories[i]
			return &c
		}
	}
	return nil
}

// VendorByID は指定IDのベンダーを返す。見つからない場合はnilを返す。
func (s *Snapshot) VendorByID(id string) *model.Vendor {
	for i := range s.vendors {
		if s.vendors[i].ID == id {
			v := copyVendor(s.vendors[i])
			return &v
		}
	}
	return nil
}

// HasRegion は州と都市の組み合わせが地域テーブルに存在するかを返す。
// cityが空文字列の場合は州の存在のみを確認する。
func (s *Snapshot) HasRegion(state, city string) bool {
	cities, ok := s.regions[state]
	if !ok {
		return false
	}
	if city == "" {
		return true
	}
	for _, c := range cities {
		if c == city {
			return true
		}
	}
	return false
}

// copyVendor はImagesスライスを含めてベンダーを複製する。
func copyVendor(v model.Vendor) model.Vendor {
	out := v
	if v.Images != nil {
		out.Images = make([]string, len(v.Images))
		copy(out.Images, v.Images)
	}
	return out
}

// sortedDistinct は値の重複を除去し、昇順ソートした新しいスライスを返す。
// 入力が空の場合は空スライス（nilではない）を返す。
func sortedDistinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
