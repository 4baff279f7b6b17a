package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/evno/internal/model"
)

// PostgresBookingRepo はPostgreSQLを使用した予約リポジトリ。
type PostgresBookingRepo struct {
	db *sql.DB
}

// NewPostgresBookingRepo はPostgresBookingRepoを生成する。
func NewPostgresBookingRepo(db *sql.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

// Create は予約を作成する。
// 同一ベンダー・同一日の確定予約の一意性はDBの部分ユニークインデックスでも
// 保証されるため、競合時はエラーになる。
func (r *PostgresBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, vendor_id, event_date, cost_per_day, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.UserID, booking.VendorID, booking.EventDate,
		booking.CostPerDay, booking.Status, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b := &model.Booking{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, vendor_id, event_date, cost_per_day, status, created_at, updated_at
		 FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.UserID, &b.VendorID, &b.EventDate, &b.CostPerDay, &b.Status, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return b, nil
}

// FindConfirmedByVendorAndDate は指定ベンダー・指定日の確定済み予約を検索する。
// 見つからない場合はnilを返す。
func (r *PostgresBookingRepo) FindConfirmedByVendorAndDate(ctx context.Context, vendorID string, date time.Time) (*model.Booking, error) {
	b := &model.Booking{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, vendor_id, event_date, cost_per_day, status, created_at, updated_at
		 FROM bookings
		 WHERE vendor_id = $1 AND event_date = $2 AND status = 'confirmed'`,
		vendorID, date,
	).Scan(&b.ID, &b.UserID, &b.VendorID, &b.EventDate, &b.CostPerDay, &b.Status, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking by vendor and date: %w", err)
	}

	return b, nil
}

// ListByUserID はユーザーの予約一覧を開催日昇順で返す。
func (r *PostgresBookingRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, vendor_id, event_date, cost_per_day, status, created_at, updated_at
		 FROM bookings WHERE user_id = $1 ORDER BY event_date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b := &model.Booking{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.VendorID, &b.EventDate, &b.CostPerDay, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus は予約の状態を更新する。
func (r *PostgresBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}
	return nil
}

// DeleteByUserID はユーザーの全予約を削除する。退会処理で使用する。
func (r *PostgresBookingRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user bookings: %w", err)
	}
	return nil
}

// compile-time interface check
var _ BookingRepository = (*PostgresBookingRepo)(nil)
