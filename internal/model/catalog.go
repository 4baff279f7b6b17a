// Package model はドメインモデルを定義する。
package model

import "time"

// Category はベンダーが属するサービス区分（DJ、ケータリング等）を表す。
// 起動時にカタログへロードされ、以降は変更されない。
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string // 表示用の16進カラーコード（例: "#FF6B6B"）
}

// Vendor はイベントサービスの提供事業者を表す。
// Category・State・Cityはカタログの参照テーブルと一致している場合のみ
// リゾルバーの導出インデックスから発見可能になる。
type Vendor struct {
	ID           string
	Name         string
	Category     string
	City         string
	State        string
	CostPerDay   int // 1日あたりの料金（ルピー、正の値）
	Rating       float64
	Availability bool
	Description  string
	Images       []string
	WebsiteURL   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VendorFeedStatus はベンダー告知フィードのフェッチ状態を表す。
type VendorFeedStatus string

const (
	// VendorFeedStatusActive はフェッチが有効な状態。
	VendorFeedStatusActive VendorFeedStatus = "active"
	// VendorFeedStatusStopped はフェッチが停止された状態。
	VendorFeedStatusStopped VendorFeedStatus = "stopped"
)

// VendorFeed はベンダーが公開する告知フィードとそのフェッチ状態を表す。
// 条件付きGET用のETag/Last-Modifiedと指数バックオフ用のカウンタを保持する。
type VendorFeed struct {
	VendorID          string
	FeedURL           string
	ETag              string
	LastModified      string
	FetchStatus       VendorFeedStatus
	ConsecutiveErrors int
	ErrorMessage      string
	NextFetchAt       time.Time
	UpdatedAt         time.Time
}

// Announcement はベンダー告知フィードから取り込んだお知らせを表す。
type Announcement struct {
	ID          string
	VendorID    string
	Title       string
	Link        string
	Summary     string
	PublishedAt time.Time
	CreatedAt   time.Time
}
