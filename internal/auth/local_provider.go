package auth

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// minPasswordLength はアカウント作成時のパスワード最低文字数。
const minPasswordLength = 6

// LocalProviderConfig はLocalProviderの設定。
type LocalProviderConfig struct {
	BcryptCost int // 0以下の場合はbcrypt.DefaultCost
}

// LocalProvider はPostgresのユーザーテーブルを使うProvider実装。
// 外部SDKの代わりにローカルでメール/パスワード認証を提供し、
// 現在のサインイン状態と購読者への通知をこの層で管理する。
//
// サインイン状態はプロセス内のシングルトンであり、モバイルクライアント
// 組み込みやCLIのような単一ユーザーの利用形態を想定している。
// HTTP APIの多重ユーザーセッションはSessionServiceが別途管理する。
type LocalProvider struct {
	users  repository.UserRepository
	config LocalProviderConfig

	mu      sync.Mutex
	current *model.UserHandle
	subs    map[int]func(*model.UserHandle)
	nextSub int
}

// NewLocalProvider はLocalProviderを生成する。
func NewLocalProvider(users repository.UserRepository, config LocalProviderConfig) *LocalProvider {
	if config.BcryptCost <= 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &LocalProvider{
		users:  users,
		config: config,
		subs:   make(map[int]func(*model.UserHandle)),
	}
}

// CreateAccount はメールアドレスとパスワードでアカウントを作成する。
// 作成に成功した場合はそのユーザーでサインイン状態になる。
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*model.UserHandle, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrInvalidEmail}
	}
	if len(password) < minPasswordLength {
		return nil, &model.ProviderError{Code: model.AuthErrWeakPassword}
	}

	existing, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrNetworkFailed, Message: err.Error()}
	}
	if existing != nil {
		return nil, &model.ProviderError{Code: model.AuthErrEmailAlreadyInUse}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.config.BcryptCost)
	if err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrOperationNotAllowed, Message: err.Error()}
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrNetworkFailed, Message: err.Error()}
	}

	handle := &model.UserHandle{UID: user.ID, Email: user.Email}
	p.setCurrent(handle)
	return copyHandle(handle), nil
}

// UpdateDisplayName は指定UIDのアカウントの表示名を更新する。
func (p *LocalProvider) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	if err := p.users.UpdateDisplayName(ctx, uid, displayName); err != nil {
		return &model.ProviderError{Code: model.AuthErrNetworkFailed, Message: err.Error()}
	}

	// サインイン中のユーザー自身の場合は保持している状態も更新する
	p.mu.Lock()
	if p.current != nil && p.current.UID == uid {
		p.current.DisplayName = displayName
	}
	p.mu.Unlock()
	return nil
}

// SignIn はメールアドレスとパスワードでサインインする。
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*model.UserHandle, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrNetworkFailed, Message: err.Error()}
	}
	if user == nil {
		return nil, &model.ProviderError{Code: model.AuthErrUserNotFound}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &model.ProviderError{Code: model.AuthErrWrongPassword}
	}

	handle := &model.UserHandle{UID: user.ID, Email: user.Email, DisplayName: user.DisplayName}
	p.setCurrent(handle)
	return copyHandle(handle), nil
}

// SignOut は現在のサインイン状態を破棄し、購読者にnilを通知する。
// 未サインインの場合も成功として扱う（冪等）。
func (p *LocalProvider) SignOut(_ context.Context) error {
	p.setCurrent(nil)
	return nil
}

// CurrentUser は現在のサインイン状態を返す。未サインインの場合はnil。
func (p *LocalProvider) CurrentUser() *model.UserHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyHandle(p.current)
}

// OnStateChanged は状態変更通知を購読する。
// 登録直後に現在の状態で1回コールバックする。
// 返り値の解除関数は複数回呼んでも安全（冪等）。
// コールバックはロック外で呼び出すため、別goroutineからの解除と
// 状態変更が競合した場合、進行中の通知が1回届くことがある。
func (p *LocalProvider) OnStateChanged(fn func(*model.UserHandle)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	current := copyHandle(p.current)
	p.mu.Unlock()

	// 登録直後の即時通知
	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// setCurrent は現在のサインイン状態を差し替え、全購読者に通知する。
// コールバックはロック外で呼び出し、コールバック内からの再購読・解除を許す。
func (p *LocalProvider) setCurrent(handle *model.UserHandle) {
	p.mu.Lock()
	p.current = copyHandle(handle)
	subs := make([]func(*model.UserHandle), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(copyHandle(handle))
	}
}

// copyHandle はUserHandleを複製する。nilはnilのまま返す。
func copyHandle(h *model.UserHandle) *model.UserHandle {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

// compile-time interface check
var _ Provider = (*LocalProvider)(nil)
