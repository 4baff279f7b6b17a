package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/evno/internal/catalog"
	"github.com/hitoshi/evno/internal/model"
)

// CatalogHandler はカタログ検索のHTTPハンドラー。
// 全エンドポイントは認証不要の読み取り専用で、未知のカテゴリ・州・都市は
// エラーではなく空の結果として返す。
type CatalogHandler struct {
	resolver *catalog.Resolver
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(resolver *catalog.Resolver) *CatalogHandler {
	return &CatalogHandler{resolver: resolver}
}

// categoryResponse はカテゴリのAPIレスポンス。
type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// statesResponse は州一覧のAPIレスポンス。
type statesResponse struct {
	States []string `json:"states"`
}

// citiesResponse は都市一覧のAPIレスポンス。
type citiesResponse struct {
	Cities []string `json:"cities"`
}

// ListCategories はカテゴリ一覧をデータセット順で返す。
// GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.resolver.Snapshot().Categories()
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListStates は地域テーブルの全州名を昇順ソートで返す。
// GET /api/states
func (h *CatalogHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statesResponse{States: h.resolver.AllStates()})
}

// ListCitiesForState は指定州の都市一覧を地域テーブル記載順で返す。
// 未知の州は空の結果。
// GET /api/states/{state}/cities
func (h *CatalogHandler) ListCitiesForState(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	writeJSON(w, http.StatusOK, citiesResponse{Cities: h.resolver.CitiesForState(state)})
}

// ListStatesForCategory は指定カテゴリのベンダーが存在する州を
// 重複排除・昇順ソートで返す。未知のカテゴリは空の結果。
// GET /api/categories/{category}/states
func (h *CatalogHandler) ListStatesForCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	writeJSON(w, http.StatusOK, statesResponse{States: h.resolver.StatesForCategory(category)})
}

// ListCitiesForCategoryAndState は指定カテゴリ・州のベンダーが存在する都市を
// 重複排除・昇順ソートで返す。
// GET /api/categories/{category}/states/{state}/cities
func (h *CatalogHandler) ListCitiesForCategoryAndState(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	state := chi.URLParam(r, "state")
	writeJSON(w, http.StatusOK, citiesResponse{
		Cities: h.resolver.CitiesForCategoryAndState(category, state),
	})
}

// ListVendors はカテゴリ・州・都市の3条件すべてに一致するベンダーを
// データセット順で返す。3条件はすべて必須。
// GET /api/vendors?category=DJ&state=Punjab&city=Amritsar
func (h *CatalogHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	state := q.Get("state")
	city := q.Get("city")

	if category == "" || state == "" || city == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "category、state、cityの3つのクエリパラメータが必要です。",
			Category: "validation",
			Action:   "カテゴリ・州・都市をすべて指定してください。",
		})
		return
	}

	vendors := h.resolver.VendorsByFilters(category, state, city)
	out := make([]vendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, toVendorResponse(&vendors[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
