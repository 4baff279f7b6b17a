// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/evno/internal/model"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
// 各操作は例外を投げる代わりに、成否と整形済みエラーを持つ
// model.AuthResultを必ず返す。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, displayName string) model.AuthResult
	SignIn(ctx context.Context, email, password string) model.AuthResult
	SignOut(ctx context.Context) model.AuthResult
}

// SessionIssuer はHTTPセッションの発行・破棄・参照インターフェース。
type SessionIssuer interface {
	Issue(ctx context.Context, userID string) (*model.Session, error)
	Revoke(ctx context.Context, sessionID string) error
	UserBySession(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はメール/パスワード認証のHTTPハンドラー。
// 認証結果はすべてmodel.AuthResultのJSONとして返し、
// 成功時はHTTP Only Cookieでセッションを払い出す。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionIssuer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionIssuer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		config:   config,
	}
}

// signUpRequest はサインアップリクエストのボディ。
type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp はアカウントを作成する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result := h.service.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if !result.Success {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}

	h.issueSessionCookie(w, r, result.User.UID)
	writeJSON(w, http.StatusCreated, result)
}

// SignIn はメールアドレスとパスワードでサインインする。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result := h.service.SignIn(r.Context(), req.Email, req.Password)
	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, result)
		return
	}

	h.issueSessionCookie(w, r, result.User.UID)
	writeJSON(w, http.StatusOK, result)
}

// SignOut はセッションを破棄する。
// セッションが存在しない場合も成功として扱う（冪等）。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if revokeErr := h.sessions.Revoke(r.Context(), cookie.Value); revokeErr != nil {
			slog.Error("failed to revoke session", slog.String("error", revokeErr.Error()))
			// 破棄に失敗してもCookieはクリアする
		}
	}

	result := h.service.SignOut(r.Context())

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, result)
}

// meResponse は現在のユーザー情報のAPIレスポンス。
type meResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeUnauthorized(w)
		return
	}

	user, err := h.sessions.UserBySession(r.Context(), cookie.Value)
	if err != nil {
		slog.Info("failed to resolve session user", slog.String("error", err.Error()))
		writeUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

// issueSessionCookie はセッションを発行しCookieに設定する。
// セッション発行に失敗した場合はCookieなしで続行する（ログのみ）。
func (h *AuthHandler) issueSessionCookie(w http.ResponseWriter, r *http.Request, userID string) {
	session, err := h.sessions.Issue(r.Context(), userID)
	if err != nil {
		slog.Error("failed to issue session", slog.String("error", err.Error()))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
