package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hitoshi/evno/internal/model"
)

// errorMessages はプロバイダーのエラーコードを表示用メッセージに変換する
// 固定テーブル。モバイルクライアントがそのまま表示する文字列のため英語。
var errorMessages = map[string]string{
	model.AuthErrInvalidEmail:        "Invalid email address",
	model.AuthErrUserDisabled:        "This user account has been disabled",
	model.AuthErrUserNotFound:        "No account found with this email",
	model.AuthErrWrongPassword:       "Incorrect password",
	model.AuthErrEmailAlreadyInUse:   "An account already exists with this email",
	model.AuthErrWeakPassword:        "Password is too weak (minimum 6 characters)",
	model.AuthErrOperationNotAllowed: "Email/password authentication is not enabled",
	model.AuthErrNetworkFailed:       "Network error. Please check your connection",
	model.AuthErrTooManyRequests:     "Too many failed attempts. Try again later",
}

// genericErrorMessage は整形の最終フォールバック。
const genericErrorMessage = "An error occurred. Please try again"

// Normalizer はIDプロバイダーの操作を統一結果型（model.AuthResult）に
// 正規化する薄いアダプター。プロバイダー固有のエラーは呼び出し側に
// 一切伝播させず、必ず整形済みの文字列としてAuthResult.Errorに載せる。
type Normalizer struct {
	provider Provider
}

// NewNormalizer はNormalizerを生成する。
func NewNormalizer(provider Provider) *Normalizer {
	return &Normalizer{provider: provider}
}

// SignUp はアカウントを作成し、続けて表示名を設定する。
// アカウント作成が完了していれば、表示名の更新に失敗しても成功として
// 報告する（失敗はログにのみ記録する）。アカウントは存在しており、
// 表示名は後から再設定できるため。
func (n *Normalizer) SignUp(ctx context.Context, email, password, displayName string) model.AuthResult {
	handle, err := n.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return model.AuthResult{Success: false, Error: FormatError(err)}
	}

	if err := n.provider.UpdateDisplayName(ctx, handle.UID, displayName); err != nil {
		slog.Warn("display name update failed after account creation",
			slog.String("uid", handle.UID),
			slog.String("error", err.Error()),
		)
	} else {
		handle.DisplayName = displayName
	}

	return model.AuthResult{
		Success: true,
		User:    handle,
		Message: "Account created successfully",
	}
}

// SignIn はメールアドレスとパスワードでサインインする。
func (n *Normalizer) SignIn(ctx context.Context, email, password string) model.AuthResult {
	handle, err := n.provider.SignIn(ctx, email, password)
	if err != nil {
		return model.AuthResult{Success: false, Error: FormatError(err)}
	}

	return model.AuthResult{
		Success: true,
		User:    handle,
		Message: "Logged in successfully",
	}
}

// SignOut は現在のサインイン状態を破棄する。
func (n *Normalizer) SignOut(ctx context.Context) model.AuthResult {
	if err := n.provider.SignOut(ctx); err != nil {
		return model.AuthResult{Success: false, Error: FormatError(err)}
	}

	return model.AuthResult{
		Success: true,
		Message: "Signed out successfully",
	}
}

// CurrentUser はプロバイダーがキャッシュしている現在のユーザーを返す。
// 未サインインの場合はnil。エラーは返さない。
func (n *Normalizer) CurrentUser() *model.UserHandle {
	return n.provider.CurrentUser()
}

// IsAuthenticated はサインイン済みかどうかを返す。
func (n *Normalizer) IsAuthenticated() bool {
	return n.provider.CurrentUser() != nil
}

// OnAuthStateChanged はサインイン状態の変更通知を購読する。
// 契約（登録直後の即時通知、解除の冪等性）はプロバイダーの実装に従う。
func (n *Normalizer) OnAuthStateChanged(fn func(*model.UserHandle)) (unsubscribe func()) {
	return n.provider.OnStateChanged(fn)
}

// FormatError はプロバイダーのエラーを表示用メッセージに整形する。
// 3段階フォールバック: コード対応表 → プロバイダーの生メッセージ →
// 汎用メッセージ。空文字列は決して返さない。
func FormatError(err error) string {
	var perr *model.ProviderError
	if errors.As(err, &perr) {
		if msg, ok := errorMessages[perr.Code]; ok {
			return msg
		}
		if perr.Message != "" {
			return perr.Message
		}
		return genericErrorMessage
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return genericErrorMessage
}
