// Package booking はベンダー予約のドメインロジックを提供する。
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// MetricsRecorder は予約作成件数のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordBookingCreated()
}

// Service はベンダー予約のサービス層。
// ベンダー確認 → 日付検証 → 競合チェック → 予約作成のフローを統括する。
type Service struct {
	bookingRepo repository.BookingRepository
	vendorRepo  repository.VendorRepository
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnil可。
func NewService(bookingRepo repository.BookingRepository, vendorRepo repository.VendorRepository, metrics MetricsRecorder) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		vendorRepo:  vendorRepo,
		metrics:     metrics,
	}
}

// Book はベンダーを指定日で予約する。
// 料金は予約時点のベンダー日額をスナップショットとして保持する。
// 同一ベンダー・同一日の確定予約が既にある場合はBOOKING_CONFLICTを返す。
func (s *Service) Book(ctx context.Context, userID, vendorID string, eventDate time.Time) (*model.Booking, error) {
	v, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("ベンダーの取得に失敗しました: %w", err)
	}
	if v == nil {
		return nil, model.NewVendorNotFoundError(vendorID)
	}
	if !v.Availability {
		return nil, model.NewVendorUnavailableError(vendorID)
	}

	// 日付単位に正規化し、過去日を拒否する
	date := truncateToDate(eventDate)
	today := truncateToDate(time.Now())
	if date.Before(today) {
		return nil, model.NewInvalidEventDateError("過去の日付は指定できません")
	}

	existing, err := s.bookingRepo.FindConfirmedByVendorAndDate(ctx, vendorID, date)
	if err != nil {
		return nil, fmt.Errorf("予約の確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewBookingConflictError(date.Format("2006-01-02"))
	}

	now := time.Now()
	b := &model.Booking{
		ID:         uuid.New().String(),
		UserID:     userID,
		VendorID:   vendorID,
		EventDate:  date,
		CostPerDay: v.CostPerDay,
		Status:     model.BookingStatusConfirmed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// 同時リクエストの競合はDBの部分ユニークインデックスが最終防衛線になる
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("予約の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordBookingCreated()
	}

	return b, nil
}

// ListForUser はユーザーの予約一覧を開催日昇順で返す。
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	bookings, err := s.bookingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	return bookings, nil
}

// Cancel は予約をキャンセルする。
// 他ユーザーの予約はBOOKING_NOT_FOUNDとして扱い、存在を漏らさない。
// 既にキャンセル済みの場合はそのまま返す（冪等）。
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	b, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
	}
	if b == nil || b.UserID != userID {
		return nil, model.NewBookingNotFoundError(bookingID)
	}
	if b.Status == model.BookingStatusCancelled {
		return b, nil
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("予約のキャンセルに失敗しました: %w", err)
	}

	b.Status = model.BookingStatusCancelled
	b.UpdatedAt = time.Now()
	return b, nil
}

// truncateToDate は時刻を日付単位（UTC 00:00:00）に正規化する。
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
