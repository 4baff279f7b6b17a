package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/evno/internal/middleware"
	"github.com/hitoshi/evno/internal/model"
)

// eventDateLayout は開催日のリクエスト・レスポンス形式。
const eventDateLayout = "2006-01-02"

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	Book(ctx context.Context, userID, vendorID string, eventDate time.Time) (*model.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error)
}

// BookingHandler はベンダー予約のHTTPハンドラー。
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// createBookingRequest は予約作成リクエストのボディ。
type createBookingRequest struct {
	VendorID  string `json:"vendor_id"`
	EventDate string `json:"event_date"` // YYYY-MM-DD
}

// bookingResponse は予約情報のAPIレスポンス。
type bookingResponse struct {
	ID         string `json:"id"`
	VendorID   string `json:"vendor_id"`
	EventDate  string `json:"event_date"`
	CostPerDay int    `json:"cost_per_day"`
	Status     string `json:"status"`
}

// Create は予約作成を処理する。
// POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.VendorID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "vendor_idが指定されていません。",
			Category: "validation",
			Action:   "予約するベンダーのIDを指定してください。",
		})
		return
	}

	eventDate, err := time.Parse(eventDateLayout, req.EventDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidEventDateError("日付の形式が不正です"))
		return
	}

	b, err := h.service.Book(r.Context(), userID, req.VendorID, eventDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// List はユーザーの予約一覧を開催日昇順で返す。
// GET /api/bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// Cancel は予約をキャンセルする。
// DELETE /api/bookings/{id}
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	bookingID := chi.URLParam(r, "id")

	b, err := h.service.Cancel(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// toBookingResponse はmodel.BookingからAPIレスポンスに変換する。
func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		VendorID:   b.VendorID,
		EventDate:  b.EventDate.Format(eventDateLayout),
		CostPerDay: b.CostPerDay,
		Status:     string(b.Status),
	}
}
