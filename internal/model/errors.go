// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, booking, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeVendorNotFound    = "VENDOR_NOT_FOUND"
	ErrCodeUnknownCategory   = "UNKNOWN_CATEGORY"
	ErrCodeUnknownLocation   = "UNKNOWN_LOCATION"
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeSSRFBlocked       = "SSRF_BLOCKED"
	ErrCodeFeedNotDetected   = "FEED_NOT_DETECTED"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeParseFailed       = "PARSE_FAILED"
	ErrCodeVendorUnavailable = "VENDOR_UNAVAILABLE"
	ErrCodeBookingConflict   = "BOOKING_CONFLICT"
	ErrCodeBookingNotFound   = "BOOKING_NOT_FOUND"
	ErrCodeInvalidEventDate  = "INVALID_EVENT_DATE"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
)

// NewVendorNotFoundError はベンダー未検出エラーを生成する。
func NewVendorNotFoundError(vendorID string) *APIError {
	return &APIError{
		Code:     ErrCodeVendorNotFound,
		Message:  fmt.Sprintf("指定されたベンダーが見つかりません: %s", vendorID),
		Category: "catalog",
		Action:   "ベンダーIDを確認してください。",
	}
}

// NewUnknownCategoryError は未登録カテゴリエラーを生成する。
// カタログ検索では未知のカテゴリは空結果として扱うため、
// このエラーはベンダー登録時の検証でのみ使用する。
func NewUnknownCategoryError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownCategory,
		Message:  fmt.Sprintf("未登録のカテゴリです: %s", name),
		Category: "validation",
		Action:   "カテゴリ一覧に存在するカテゴリ名を指定してください。",
	}
}

// NewUnknownLocationError は地域テーブルに存在しない州・都市エラーを生成する。
func NewUnknownLocationError(state, city string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownLocation,
		Message:  fmt.Sprintf("地域テーブルに存在しない州・都市です: %s / %s", state, city),
		Category: "validation",
		Action:   "州一覧と都市一覧に存在する組み合わせを指定してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFeedNotDetectedError は告知フィード未検出エラーを生成する。
func NewFeedNotDetectedError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedNotDetected,
		Message:  fmt.Sprintf("指定されたURLからRSS/Atomフィードを検出できませんでした: %s", url),
		Category: "catalog",
		Action:   "フィードのURLを直接入力するか、フィードが公開されているページのURLを確認してください。",
	}
}

// NewFetchFailedError はフェッチ失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("URLの取得に失敗しました: %s", reason),
		Category: "catalog",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError はパース失敗エラーを生成する。
func NewParseFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  "フィードの解析に失敗しました。",
		Category: "catalog",
		Action:   "有効なRSS/Atomフィードかどうか確認してください。",
	}
}

// NewVendorUnavailableError は予約不可ベンダーエラーを生成する。
func NewVendorUnavailableError(vendorID string) *APIError {
	return &APIError{
		Code:     ErrCodeVendorUnavailable,
		Message:  fmt.Sprintf("このベンダーは現在予約を受け付けていません: %s", vendorID),
		Category: "booking",
		Action:   "他のベンダーを選択するか、時間をおいて再度お試しください。",
	}
}

// NewBookingConflictError は予約重複エラーを生成する。
func NewBookingConflictError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingConflict,
		Message:  fmt.Sprintf("指定日には既に確定済みの予約があります: %s", date),
		Category: "booking",
		Action:   "別の日付を選択してください。",
	}
}

// NewBookingNotFoundError は予約未検出エラーを生成する。
func NewBookingNotFoundError(bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", bookingID),
		Category: "booking",
		Action:   "予約IDを確認してください。",
	}
}

// NewInvalidEventDateError は無効な開催日エラーを生成する。
func NewInvalidEventDateError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEventDate,
		Message:  fmt.Sprintf("無効な開催日です: %s", reason),
		Category: "validation",
		Action:   "開催日はYYYY-MM-DD形式の未来日で指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
