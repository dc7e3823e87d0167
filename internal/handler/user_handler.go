package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aliendex/internal/middleware"
	"github.com/hitoshi/aliendex/internal/model"
)

// AuthServiceInterface はユーザーハンドラーが必要とする認証サービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, auth model.AuthContext) (*model.User, error)
}

// CookieSigner はセッションCookieの値に署名し、検証するインターフェース。
type CookieSigner interface {
	Sign(value string) string
	Verify(signed string) (string, bool)
}

// UserHandlerConfig はユーザーハンドラーの設定。
type UserHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// UserHandler はユーザー登録とログインのHTTPハンドラー。
type UserHandler struct {
	service AuthServiceInterface
	signer  CookieSigner
	config  UserHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service AuthServiceInterface, signer CookieSigner, config UserHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		signer:  signer,
		config:  config,
	}
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Signup はユーザーを登録する。
// POST /users/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "username", "password")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, err := h.service.Signup(r.Context(), fields["username"], fields["password"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID.Hex(), Username: user.Username})
}

// Login はパスワードを検証し、署名付きのセッションCookieを発行する。
// POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "username", "password")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), fields["username"], fields["password"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    h.signer.Sign(session.ID),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: session.UserID.Hex(), Username: session.Username})
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := middleware.SessionIDFromRequest(r, h.signer); sessionID != "" {
		if err := h.service.Logout(r.Context(), sessionID); err != nil {
			// ログアウト失敗してもCookieはクリアする
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), middleware.AuthFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID.Hex(), Username: user.Username})
}
