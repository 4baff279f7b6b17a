package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/evno/internal/middleware"
	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/vendor"
)

// VendorServiceInterface はベンダーハンドラーが必要とするサービスインターフェース。
type VendorServiceInterface interface {
	// Register は新規ベンダーを登録し、カタログスナップショットを再読込する。
	Register(ctx context.Context, in vendor.RegisterInput) (*model.Vendor, error)
	// Get は指定IDのベンダーを取得する。
	Get(ctx context.Context, vendorID string) (*model.Vendor, error)
}

// VendorHandler はベンダー登録・取得のHTTPハンドラー。
type VendorHandler struct {
	service VendorServiceInterface
}

// NewVendorHandler はVendorHandlerを生成する。
func NewVendorHandler(service VendorServiceInterface) *VendorHandler {
	return &VendorHandler{service: service}
}

// registerVendorRequest はベンダー登録リクエストのボディ。
type registerVendorRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	CostPerDay  int      `json:"cost_per_day"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	WebsiteURL  string   `json:"website_url"`
	FeedURL     string   `json:"feed_url"`
}

// vendorResponse はベンダー情報のAPIレスポンス。
type vendorResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	CostPerDay   int      `json:"cost_per_day"`
	Rating       float64  `json:"rating"`
	Availability bool     `json:"availability"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
	WebsiteURL   string   `json:"website_url"`
}

// Register はベンダー登録を処理する。
// POST /api/vendors
func (h *VendorHandler) Register(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req registerVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	v, err := h.service.Register(r.Context(), vendor.RegisterInput{
		Name:        req.Name,
		Category:    req.Category,
		City:        req.City,
		State:       req.State,
		CostPerDay:  req.CostPerDay,
		Description: req.Description,
		Images:      req.Images,
		WebsiteURL:  req.WebsiteURL,
		FeedURL:     req.FeedURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVendorResponse(v))
}

// Get はベンダー詳細を取得する。
// GET /api/vendors/{id}
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "id")

	v, err := h.service.Get(r.Context(), vendorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

// toVendorResponse はmodel.VendorからAPIレスポンスに変換する。
func toVendorResponse(v *model.Vendor) vendorResponse {
	images := v.Images
	if images == nil {
		images = []string{}
	}
	return vendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		Category:     v.Category,
		City:         v.City,
		State:        v.State,
		CostPerDay:   v.CostPerDay,
		Rating:       v.Rating,
		Availability: v.Availability,
		Description:  v.Description,
		Images:       images,
		WebsiteURL:   v.WebsiteURL,
	}
}
