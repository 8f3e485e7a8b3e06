// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/nexlist/internal/auth"
	"github.com/hitoshi/nexlist/internal/middleware"
	"github.com/hitoshi/nexlist/internal/model"
)

const (
	sessionCookieName = "access_token"
	oauthStateCookie  = "oauth_state"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (string, *model.User, error)
	GetCurrentUser(ctx context.Context, userID int64) (*model.User, error)
}

// SessionVerifier はセッショントークンの検証インターフェース。
// token.Codecの部分集合として定義する。
type SessionVerifier interface {
	Verify(tokenString string) (int64, error)
}

// LoginMetrics はログイン結果のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendBaseURL string // コールバック成功時のリダイレクト先
	CookieDomain    string
	CookieSecure    bool
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	verifier SessionVerifier
	metrics  LoginMetrics
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
// metricsはnilでもよい（テスト用）。
func NewAuthHandler(service AuthServiceInterface, verifier SessionVerifier, metrics LoginMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		verifier: verifier,
		metrics:  metrics,
		config:   config,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/login/google
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
//
// 成功時はセッションCookieを設定してフロントエンドへリダイレクトする。
// トークン交換失敗は400、ユーザー情報取得失敗は401（Cookie破棄付き）を返す。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("state parameter mismatch"))
		return
	}

	// stateクッキーを削除
	h.clearCookie(w, oauthStateCookie)

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("missing authorization code"))
		return
	}

	// 3. 認証処理（トークン交換 → プロフィール取得 → ユーザー解決 → トークン発行）
	sessionToken, user, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		h.writeCallbackError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}

	slog.Info("oauth callback succeeded", slog.Int64("user_id", user.ID))

	// 4. セッションCookieを設定（HTTP Only・SameSite=Lax）。
	// MaxAgeは設定しない。有効期限はトークン自身のexpクレームが持つ。
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 5. フロントエンドにリダイレクト
	http.Redirect(w, r, h.config.FrontendBaseURL, http.StatusTemporaryRedirect)
}

// writeCallbackError はコールバック失敗をエラー種別ごとのレスポンスに変換する。
// 認可コードは使い捨てのため、どの失敗もサーバー側ではリトライしない。
func (h *AuthHandler) writeCallbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExchange):
		slog.Warn("oauth token exchange failed", slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.RecordLoginFailure("token_exchange")
		}
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewTokenExchangeError())

	case errors.Is(err, auth.ErrUserInfoFetch):
		slog.Warn("oauth user info fetch failed", slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.RecordLoginFailure("userinfo_fetch")
		}
		// 古いセッションCookieが残っていても無効なので破棄させる
		h.clearCookie(w, sessionCookieName)
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUserInfoFetchError())

	default:
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.RecordLoginFailure("internal")
		}
		middleware.WriteInternalServerError(w)
	}
}

// Logout はセッションCookieを破棄する。
// POST /auth/logout
// トークンはサーバー側に保存していないため、Cookie削除のみで完了する。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, sessionCookieName)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Logged out",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewLoginRequiredError())
		return
	}

	userID, err := h.verifier.Verify(cookie.Value)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if user == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
}

// clearCookie は指定された名前のCookieを削除する。
func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
