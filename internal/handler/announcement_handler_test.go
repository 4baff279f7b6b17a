package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

type mockAnnouncementLister struct {
	listRecentFn func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error)
}

func (m *mockAnnouncementLister) ListRecent(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []repository.AnnouncementWithVendor{}, nil
}

var _ AnnouncementLister = (*mockAnnouncementLister)(nil)

func TestAnnouncementHandler_List_ReturnsAnnouncementsWithVendorInfo(t *testing.T) {
	published := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lister := &mockAnnouncementLister{
		listRecentFn: func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
			return []repository.AnnouncementWithVendor{
				{
					Announcement: model.Announcement{
						ID:          "a1",
						VendorID:    "v1",
						Title:       "新メニューのお知らせ",
						Link:        "https://vendor.example.com/news/1",
						Summary:     "秋の新メニューを開始しました",
						PublishedAt: published,
					},
					VendorName:     "Spice Route",
					VendorCategory: "Catering",
				},
			}, nil
		},
	}
	h := NewAnnouncementHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got []announcementResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].VendorName != "Spice Route" || got[0].VendorCategory != "Catering" {
		t.Errorf("vendor info = %+v", got[0])
	}
	if got[0].PublishedAt != "2026-08-01T12:00:00Z" {
		t.Errorf("published_at = %q", got[0].PublishedAt)
	}
}

func TestAnnouncementHandler_List_DefaultLimit(t *testing.T) {
	var gotLimit int
	lister := &mockAnnouncementLister{
		listRecentFn: func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
			gotLimit = limit
			return []repository.AnnouncementWithVendor{}, nil
		},
	}
	h := NewAnnouncementHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotLimit != defaultAnnouncementLimit {
		t.Errorf("limit = %d, want %d", gotLimit, defaultAnnouncementLimit)
	}
}

func TestAnnouncementHandler_List_LimitCapped(t *testing.T) {
	var gotLimit int
	lister := &mockAnnouncementLister{
		listRecentFn: func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
			gotLimit = limit
			return []repository.AnnouncementWithVendor{}, nil
		},
	}
	h := NewAnnouncementHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/announcements?limit=500", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotLimit != maxAnnouncementLimit {
		t.Errorf("limit = %d, want %d", gotLimit, maxAnnouncementLimit)
	}
}

func TestAnnouncementHandler_List_InvalidLimit_UsesDefault(t *testing.T) {
	var gotLimit int
	lister := &mockAnnouncementLister{
		listRecentFn: func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
			gotLimit = limit
			return []repository.AnnouncementWithVendor{}, nil
		},
	}
	h := NewAnnouncementHandler(lister)

	for _, raw := range []string{"abc", "-5", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/announcements?limit="+raw, nil)
		w := httptest.NewRecorder()

		h.List(w, req)

		if gotLimit != defaultAnnouncementLimit {
			t.Errorf("limit=%s: got %d, want %d", raw, gotLimit, defaultAnnouncementLimit)
		}
	}
}

func TestAnnouncementHandler_List_RepositoryError_ReturnsInternalError(t *testing.T) {
	lister := &mockAnnouncementLister{
		listRecentFn: func(ctx context.Context, limit int) ([]repository.AnnouncementWithVendor, error) {
			return nil, errors.New("db connection lost")
		},
	}
	h := NewAnnouncementHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

func TestAnnouncementHandler_List_Empty_ReturnsEmptyArray(t *testing.T) {
	h := NewAnnouncementHandler(&mockAnnouncementLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Body.String() != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", w.Body.String())
	}
}
