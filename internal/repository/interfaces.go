// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/evno/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateDisplayName は指定IDのユーザーの表示名を更新する。
	UpdateDisplayName(ctx context.Context, id, displayName string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// CatalogRepository はカタログスナップショット構築用の読み出しインターフェース。
// カテゴリ・地域テーブル・ベンダーを全件読み出す。
type CatalogRepository interface {
	// ListCategories は全カテゴリをデータセット順（position昇順）で返す。
	ListCategories(ctx context.Context) ([]model.Category, error)

	// ListRegions は州名→都市リストの地域テーブル全体を返す。
	// 各州の都市リストはテーブル記載順（position昇順）を保つ。
	ListRegions(ctx context.Context) (map[string][]string, error)

	// ListVendors は全ベンダーをデータセット順（登録順）で返す。
	ListVendors(ctx context.Context) ([]model.Vendor, error)
}

// VendorRepository はベンダーデータの書き込みインターフェース。
type VendorRepository interface {
	// Create はベンダーを作成する。
	Create(ctx context.Context, vendor *model.Vendor) error

	// FindByID は指定IDのベンダーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Vendor, error)
}

// VendorFeedRepository はベンダー告知フィードの永続化インターフェース。
type VendorFeedRepository interface {
	// Upsert はベンダーの告知フィードを登録または更新する。
	Upsert(ctx context.Context, feed *model.VendorFeed) error

	// ListDueForFetch はフェッチ対象のフィードを取得する。
	// next_fetch_at <= now() かつ fetch_status = 'active' のフィードを
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForFetch(ctx context.Context) ([]*model.VendorFeed, error)

	// UpdateFetchState はフィードのフェッチ状態を更新する。
	// fetch_status、consecutive_errors、error_message、next_fetch_at、
	// etag、last_modifiedを更新する。
	UpdateFetchState(ctx context.Context, feed *model.VendorFeed) error
}

// AnnouncementWithVendor はお知らせとベンダー表示情報を結合した構造体。
type AnnouncementWithVendor struct {
	model.Announcement
	VendorName     string
	VendorCategory string
}

// AnnouncementRepository はベンダー告知の永続化インターフェース。
type AnnouncementRepository interface {
	// FindByVendorAndLink はvendor_idとlinkでお知らせを検索する。
	// 同一性判定に使用する。見つからない場合はnilを返す。
	FindByVendorAndLink(ctx context.Context, vendorID, link string) (*model.Announcement, error)

	// Create は新規お知らせを作成する。
	Create(ctx context.Context, announcement *model.Announcement) error

	// Update は既存お知らせを上書き更新する。履歴は保持しない。
	Update(ctx context.Context, announcement *model.Announcement) error

	// ListRecent は公開日時の降順でお知らせ一覧をベンダー情報付きで返す。
	ListRecent(ctx context.Context, limit int) ([]AnnouncementWithVendor, error)

	// DeleteOlderThan は指定時刻より古いお知らせを削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// BookingRepository は予約データの永続化インターフェース。
type BookingRepository interface {
	// Create は予約を作成する。
	Create(ctx context.Context, booking *model.Booking) error

	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// FindConfirmedByVendorAndDate は指定ベンダー・指定日の確定済み予約を
	// 検索する。見つからない場合はnilを返す。
	FindConfirmedByVendorAndDate(ctx context.Context, vendorID string, date time.Time) (*model.Booking, error)

	// ListByUserID はユーザーの予約一覧を開催日昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Booking, error)

	// UpdateStatus は予約の状態を更新する。
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error

	// DeleteByUserID はユーザーの全予約を削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}
