// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aliendex/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	authContextKey      = contextKey("auth")
	requestIDContextKey = contextKey("request_id")
)

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// CookieVerifier は署名付きCookie値を検証し、元の値を返すインターフェース。
type CookieVerifier interface {
	Verify(signed string) (string, bool)
}

// NewSessionMiddleware は署名付きHTTP Only CookieからセッションIDを読み取り、
// AuthContextをリクエストコンテキストに注入するミドルウェアを返す。
// 未ログインのリクエストも拒否せず、匿名のAuthContextで後続に渡す。
// 認可の判定はサービス層で行う。
func NewSessionMiddleware(sessionFinder SessionFinder, verifier CookieVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := model.Anonymous()

			if sessionID, ok := sessionIDFromCookie(r, verifier); ok {
				session, err := sessionFinder.FindByID(r.Context(), sessionID)
				if err != nil {
					slog.Error("failed to find session",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w, r)
					return
				}
				// 期限切れ・不明なセッションは匿名として扱う
				auth = model.AuthFromSession(session)
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAuth(r.Context(), auth)))
		})
	}
}

// sessionIDFromCookie はCookieから署名を検証済みのセッションIDを取り出す。
func sessionIDFromCookie(r *http.Request, verifier CookieVerifier) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return verifier.Verify(cookie.Value)
}

// SessionIDFromRequest はリクエストのCookieから署名を検証済みのセッションIDを返す。
// Cookieがない、または署名が不正な場合は空文字列を返す。
func SessionIDFromRequest(r *http.Request, verifier CookieVerifier) string {
	id, _ := sessionIDFromCookie(r, verifier)
	return id
}

// AuthFromContext はリクエストコンテキストからAuthContextを取得する。
// セッションミドルウェアを通過していない場合は匿名のAuthContextを返す。
func AuthFromContext(ctx context.Context) model.AuthContext {
	auth, ok := ctx.Value(authContextKey).(model.AuthContext)
	if !ok {
		return model.Anonymous()
	}
	return auth
}

// ContextWithAuth はコンテキストにAuthContextを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuth(ctx context.Context, auth model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}
