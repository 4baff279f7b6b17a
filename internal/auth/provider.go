// Package auth はIDプロバイダーのラップ（結果正規化）、
// ローカルアカウント認証、セッション管理を提供する。
package auth

import (
	"context"

	"github.com/hitoshi/evno/internal/model"
)

// Provider は外部IDプロバイダーのインターフェース。
// アカウント作成・サインイン・サインアウト・現在ユーザー参照・
// 状態変更購読の5操作と、サインアップが使う表示名更新で構成する。
// 各操作は成功値を返すか、model.ProviderError（codeと任意のmessage）を返す。
type Provider interface {
	// CreateAccount はメールアドレスとパスワードでアカウントを作成する。
	CreateAccount(ctx context.Context, email, password string) (*model.UserHandle, error)

	// UpdateDisplayName は指定UIDのアカウントの表示名を更新する。
	UpdateDisplayName(ctx context.Context, uid, displayName string) error

	// SignIn はメールアドレスとパスワードでサインインする。
	SignIn(ctx context.Context, email, password string) (*model.UserHandle, error)

	// SignOut は現在のサインイン状態を破棄する。
	SignOut(ctx context.Context) error

	// CurrentUser はプロバイダーが保持する現在のユーザーを返す。
	// 未サインインの場合はnilを返す。エラーは返さない。
	CurrentUser() *model.UserHandle

	// OnStateChanged はサインイン状態の変更通知を購読する。
	// 登録直後に現在の状態で1回コールバックし、以降は状態が変わるたびに
	// 呼び出す（サインアウト時はnil）。返り値の関数で購読を解除する。
	// 解除関数は複数回呼んでもよい（冪等）。
	OnStateChanged(fn func(*model.UserHandle)) (unsubscribe func())
}
