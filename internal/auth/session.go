package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// SessionConfig はセッション管理の設定。
type SessionConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// SessionService はHTTP API向けの多重ユーザーセッションを管理する。
// サインイン成功時にセッションを発行し、HTTP Only Cookieで保持される
// 不透明トークンとユーザーを紐付ける。
type SessionService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      SessionConfig
}

// NewSessionService はSessionServiceを生成する。
func NewSessionService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config SessionConfig,
) *SessionService {
	return &SessionService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Issue は指定ユーザーのセッションを作成し永続化する。
func (s *SessionService) Issue(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// Revoke はセッションを破棄する。
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session revoked", slog.String("session_id", sessionID))
	return nil
}

// UserBySession はセッションIDから現在のユーザーを取得する。
// セッションが存在しない・期限切れの場合はエラーを返す。
func (s *SessionService) UserBySession(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
