package catalog

import (
	"sync/atomic"

	"github.com/hitoshi/evno/internal/model"
)

// Resolver はカタログに対する検索クエリを提供する。
// スナップショットの差し替え（ベンダー登録後のリロード）はatomicポインタの
// スワップで行うため、実行中のクエリと競合しない。
//
// 全クエリに共通する失敗セマンティクス: 未知のカテゴリ・州・都市は
// エラーではなく空の結果として表現する。
type Resolver struct {
	snap atomic.Pointer[Snapshot]
}

// NewResolver は指定スナップショットを参照するResolverを生成する。
func NewResolver(snap *Snapshot) *Resolver {
	r := &Resolver{}
	r.snap.Store(snap)
	return r
}

// Replace は参照するスナップショットを差し替える。
// 以降のクエリは新しいスナップショットに対して実行される。
func (r *Resolver) Replace(snap *Snapshot) {
	r.snap.Store(snap)
}

// Snapshot は現在参照中のスナップショットを返す。
func (r *Resolver) Snapshot() *Snapshot {
	return r.snap.Load()
}

// AllStates は地域テーブルの全州名を昇順ソートで返す。
func (r *Resolver) AllStates() []string {
	s := r.snap.Load()
	states := make([]string, 0, len(s.regions))
	for state := range s.regions {
		states = append(states, state)
	}
	return sortedDistinct(states)
}

// CitiesForState は地域テーブルから指定州の都市一覧を返す。
// カテゴリで絞り込まない汎用の参照で、ベンダーデータには依存しない。
// 未知の州の場合は空スライスを返す。
func (r *Resolver) CitiesForState(state string) []string {
	s := r.snap.Load()
	cities, ok := s.regions[state]
	if !ok {
		return []string{}
	}
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// StatesForCategory は指定カテゴリのベンダーが存在する州を
// 重複排除・昇順ソートで返す。
func (r *Resolver) StatesForCategory(category string) []string {
	s := r.snap.Load()
	var states []string
	for i := range s.vendors {
		if s.vendors[i].Category == category {
			states = append(states, s.vendors[i].State)
		}
	}
	return sortedDistinct(states)
}

// CitiesForCategoryAndState は指定カテゴリ・州のベンダーが存在する都市を
// 重複排除・昇順ソートで返す。
func (r *Resolver) CitiesForCategoryAndState(category, state string) []string {
	s := r.snap.Load()
	var cities []string
	for i := range s.vendors {
		if s.vendors[i].Category == category && s.vendors[i].State == state {
			cities = append(cities, s.vendors[i].City)
		}
	}
	return sortedDistinct(cities)
}

// VendorsByFilters はカテゴリ・州・都市の3条件すべてに完全一致する
// ベンダーをデータセット順のまま返す。ランキングは行わない。
// 一致なしは空スライスで表現する。
func (r *Resolver) VendorsByFilters(category, state, city string) []model.Vendor {
	s := r.snap.Load()
	out := make([]model.Vendor, 0)
	for i := range s.vendors {
		v := &s.vendors[i]
		if v.Category == category && v.State == state && v.City == city {
			out = append(out, copyVendor(*v))
		}
	}
	return out
}
