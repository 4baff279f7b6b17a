package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	createFn            func(ctx context.Context, user *model.User) error
	updateDisplayNameFn func(ctx context.Context, id, displayName string) error
	deleteByIDFn        func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	if m.updateDisplayNameFn != nil {
		return m.updateDisplayNameFn(ctx, id, displayName)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

// compile-time interface check
var _ repository.UserRepository = (*mockUserRepo)(nil)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func providerCode(t *testing.T, err error) string {
	t.Helper()
	var perr *model.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *model.ProviderError, got %T (%v)", err, err)
	}
	return perr.Code
}

// --- CreateAccount ---

func TestCreateAccount_InvalidEmail(t *testing.T) {
	p := NewLocalProvider(&mockUserRepo{}, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.CreateAccount(context.Background(), "not-an-email", "secret123")

	if got := providerCode(t, err); got != model.AuthErrInvalidEmail {
		t.Errorf("code = %q, want %q", got, model.AuthErrInvalidEmail)
	}
}

func TestCreateAccount_WeakPassword(t *testing.T) {
	p := NewLocalProvider(&mockUserRepo{}, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.CreateAccount(context.Background(), "new@example.com", "12345")

	if got := providerCode(t, err); got != model.AuthErrWeakPassword {
		t.Errorf("code = %q, want %q", got, model.AuthErrWeakPassword)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.CreateAccount(context.Background(), "dup@example.com", "secret123")

	if got := providerCode(t, err); got != model.AuthErrEmailAlreadyInUse {
		t.Errorf("code = %q, want %q", got, model.AuthErrEmailAlreadyInUse)
	}
}

func TestCreateAccount_PersistsUserAndSignsIn(t *testing.T) {
	var created *model.User
	users := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	handle, err := p.CreateAccount(context.Background(), "new@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if created == nil {
		t.Fatal("user was not persisted")
	}
	if created.ID == "" || created.Email != "new@example.com" {
		t.Errorf("unexpected persisted user: %+v", created)
	}
	// 平文パスワードを保存していないこと
	if created.PasswordHash == "secret123" || created.PasswordHash == "" {
		t.Error("password must be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	if handle.UID != created.ID {
		t.Errorf("handle.UID = %q, want %q", handle.UID, created.ID)
	}
	if cur := p.CurrentUser(); cur == nil || cur.UID != created.ID {
		t.Errorf("CurrentUser() = %+v, want the new account", cur)
	}
}

// --- SignIn ---

func TestSignIn_UserNotFound(t *testing.T) {
	p := NewLocalProvider(&mockUserRepo{}, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.SignIn(context.Background(), "ghost@example.com", "secret123")

	if got := providerCode(t, err); got != model.AuthErrUserNotFound {
		t.Errorf("code = %q, want %q", got, model.AuthErrUserNotFound)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "correct-password")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.SignIn(context.Background(), "user@example.com", "wrongpassword")

	if got := providerCode(t, err); got != model.AuthErrWrongPassword {
		t.Errorf("code = %q, want %q", got, model.AuthErrWrongPassword)
	}
	if cur := p.CurrentUser(); cur != nil {
		t.Errorf("CurrentUser() after failed sign-in = %+v, want nil", cur)
	}
}

func TestSignIn_SuccessSetsCurrentUser(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, DisplayName: "Priya", PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	handle, err := p.SignIn(context.Background(), "user@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	if handle.UID != "u1" || handle.DisplayName != "Priya" {
		t.Errorf("unexpected handle: %+v", handle)
	}
	if cur := p.CurrentUser(); cur == nil || cur.UID != "u1" {
		t.Errorf("CurrentUser() = %+v", cur)
	}
}

func TestSignIn_RepositoryErrorMapsToNetworkFailure(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("connection reset")
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	_, err := p.SignIn(context.Background(), "user@example.com", "secret123")

	if got := providerCode(t, err); got != model.AuthErrNetworkFailed {
		t.Errorf("code = %q, want %q", got, model.AuthErrNetworkFailed)
	}
}

// --- SignOut ---

func TestSignOut_ClearsCurrentUser(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	if _, err := p.SignIn(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if cur := p.CurrentUser(); cur != nil {
		t.Errorf("CurrentUser() after sign-out = %+v, want nil", cur)
	}

	// 未サインインでのSignOutも成功する（冪等）
	if err := p.SignOut(context.Background()); err != nil {
		t.Errorf("second SignOut() error = %v", err)
	}
}

// --- OnStateChanged ---

func TestOnStateChanged_FiresImmediatelyWithCurrentState(t *testing.T) {
	p := NewLocalProvider(&mockUserRepo{}, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	var calls []*model.UserHandle
	unsubscribe := p.OnStateChanged(func(h *model.UserHandle) {
		calls = append(calls, h)
	})
	defer unsubscribe()

	if len(calls) != 1 {
		t.Fatalf("expected 1 immediate call, got %d", len(calls))
	}
	if calls[0] != nil {
		t.Errorf("immediate call with %+v, want nil (signed out)", calls[0])
	}
}

func TestOnStateChanged_NotifiesOnTransitions(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	var calls []*model.UserHandle
	unsubscribe := p.OnStateChanged(func(h *model.UserHandle) {
		calls = append(calls, h)
	})
	defer unsubscribe()

	if _, err := p.SignIn(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	// 即時通知(nil) → サインイン(u1) → サインアウト(nil)
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[1] == nil || calls[1].UID != "u1" {
		t.Errorf("sign-in notification = %+v", calls[1])
	}
	if calls[2] != nil {
		t.Errorf("sign-out notification = %+v, want nil", calls[2])
	}
}

func TestOnStateChanged_UnsubscribeStopsNotifications(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	count := 0
	unsubscribe := p.OnStateChanged(func(*model.UserHandle) { count++ })

	unsubscribe()
	// 冪等: 2回目の解除も安全であること
	unsubscribe()

	if _, err := p.SignIn(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	if count != 1 {
		t.Errorf("callback called %d times after unsubscribe, want 1 (immediate only)", count)
	}
}

// コールバックはロック外で呼び出されるため、通知中の解除でデッドロックしない。
func TestOnStateChanged_UnsubscribeInsideCallback_DoesNotDeadlock(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	count := 0
	var unsubscribe func()
	unsubscribe = p.OnStateChanged(func(*model.UserHandle) {
		count++
		if count == 2 {
			unsubscribe()
		}
	})

	if _, err := p.SignIn(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	// 2回目の通知（サインイン）の中で解除済みのため、以降は通知されない
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	if count != 2 {
		t.Errorf("callback called %d times, want 2 (immediate + sign-in)", count)
	}
}

// --- UpdateDisplayName ---

func TestUpdateDisplayName_UpdatesCurrentUserState(t *testing.T) {
	users := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashOf(t, "secret123")}, nil
		},
	}
	p := NewLocalProvider(users, LocalProviderConfig{BcryptCost: bcrypt.MinCost})

	if _, err := p.SignIn(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if err := p.UpdateDisplayName(context.Background(), "u1", "Priya Sharma"); err != nil {
		t.Fatalf("UpdateDisplayName() error = %v", err)
	}

	if cur := p.CurrentUser(); cur == nil || cur.DisplayName != "Priya Sharma" {
		t.Errorf("CurrentUser() = %+v", cur)
	}
}
