package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField はブラウザフォームでHTTPメソッドを上書きするフィールド名。
const MethodOverrideField = "_method"

// NewMethodOverrideMiddleware はフォームのPOSTを_methodフィールドで指定された
// PUT、PATCH、DELETEとして扱うミドルウェアを返す。
// ルーティングより前に適用する必要がある。
func NewMethodOverrideMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && IsFormRequest(r) {
				switch m := strings.ToUpper(r.PostFormValue(MethodOverrideField)); m {
				case http.MethodPut, http.MethodPatch, http.MethodDelete:
					r.Method = m
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsFormRequest はリクエストがURLエンコードされたフォーム送信かどうかを判定する。
func IsFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/x-www-form-urlencoded")
}
