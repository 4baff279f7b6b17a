package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/evno/internal/repository"
)

const (
	defaultAnnouncementLimit = 50
	maxAnnouncementLimit     = 100
)

// AnnouncementLister はお知らせ一覧の取得インターフェース。
// repository.AnnouncementRepositoryの部分集合として定義する。
type AnnouncementLister interface {
	ListRecent(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error)
}

// AnnouncementHandler はベンダー告知のHTTPハンドラー。
type AnnouncementHandler struct {
	lister AnnouncementLister
}

// NewAnnouncementHandler はAnnouncementHandlerを生成する。
func NewAnnouncementHandler(lister AnnouncementLister) *AnnouncementHandler {
	return &AnnouncementHandler{lister: lister}
}

// announcementResponse はお知らせのAPIレスポンス。
type announcementResponse struct {
	ID             string `json:"id"`
	VendorID       string `json:"vendor_id"`
	VendorName     string `json:"vendor_name"`
	VendorCategory string `json:"vendor_category"`
	Title          string `json:"title"`
	Link           string `json:"link"`
	Summary        string `json:"summary"`
	PublishedAt    string `json:"published_at"`
}

// List は最新のお知らせを公開日時の降順で返す。
// GET /api/announcements?limit=50
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultAnnouncementLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxAnnouncementLimit {
		limit = maxAnnouncementLimit
	}

	announcements, err := h.lister.ListRecent(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]announcementResponse, 0, len(announcements))
	for _, a := range announcements {
		out = append(out, announcementResponse{
			ID:             a.ID,
			VendorID:       a.VendorID,
			VendorName:     a.VendorName,
			VendorCategory: a.VendorCategory,
			Title:          a.Title,
			Link:           a.Link,
			Summary:        a.Summary,
			PublishedAt:    a.PublishedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
