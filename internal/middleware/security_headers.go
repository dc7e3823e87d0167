package middleware

import "net/http"

// hstsValue はHTTPS運用時に付与するStrict-Transport-Securityの値。
const hstsValue = "max-age=63072000; includeSubDomains"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// httpsOnlyがtrueの場合はHSTSヘッダーも付与する。
func NewSecurityHeadersMiddleware(httpsOnly bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// エラービューはインラインスクリプトを持たず、フォームの送信先は自オリジンのみ
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; object-src 'none'; form-action 'self'; frame-ancestors 'none'")
			if httpsOnly {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}
