// Package model はドメインモデルを定義する。
package model

import "time"

// BookingStatus は予約の状態を表す。
type BookingStatus string

const (
	// BookingStatusConfirmed は確定済みの予約。
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusCancelled はキャンセル済みの予約。
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking はユーザーによるベンダーの予約を表す。
// 料金は予約時点のベンダー日額をスナップショットとして保持する。
type Booking struct {
	ID         string
	UserID     string
	VendorID   string
	EventDate  time.Time // 日付単位。同一ベンダー・同一日の確定予約は1件のみ。
	CostPerDay int
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
