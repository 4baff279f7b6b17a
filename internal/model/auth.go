// Package model はドメインモデルを定義する。
package model

// UserHandle はIDプロバイダーが管理するユーザーの読み取り専用ビュー。
// ライフサイクルはプロバイダー側が所有し、この層は参照のみ行う。
type UserHandle struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AuthResult は全認証オペレーションが返す統一結果型。
// 成功時はUserを、失敗時は表示用に整形済みのErrorを保持する。
// 呼び出し側は例外処理ではなくSuccessで分岐する。
type AuthResult struct {
	Success bool        `json:"success"`
	User    *UserHandle `json:"user,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ProviderError はIDプロバイダーが返すエラーを表す。
// Codeは "auth/wrong-password" のようなプロバイダー固有のエラーコード。
type ProviderError struct {
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// プロバイダーのエラーコード定数。
const (
	AuthErrInvalidEmail        = "auth/invalid-email"
	AuthErrUserDisabled        = "auth/user-disabled"
	AuthErrUserNotFound        = "auth/user-not-found"
	AuthErrWrongPassword       = "auth/wrong-password"
	AuthErrEmailAlreadyInUse   = "auth/email-already-in-use"
	AuthErrWeakPassword        = "auth/weak-password"
	AuthErrOperationNotAllowed = "auth/operation-not-allowed"
	AuthErrNetworkFailed       = "auth/network-request-failed"
	AuthErrTooManyRequests     = "auth/too-many-requests"
)
