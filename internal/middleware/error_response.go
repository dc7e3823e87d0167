package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/aliendex/internal/model"
)

// ErrorPagePath はブラウザ向けエラービューのパス。
const ErrorPagePath = "/error"

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// IsBrowserRequest はリクエストがブラウザからのものかを判定する。
// フォーム送信、またはAcceptヘッダーでapplication/jsonよりtext/htmlを先に挙げている場合にtrue。
func IsBrowserRequest(r *http.Request) bool {
	if IsFormRequest(r) {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "text/html":
			return true
		case "application/json":
			return false
		}
	}
	return false
}

// RedirectToErrorPage はメッセージをクエリに載せてエラービューへ303でリダイレクトする。
func RedirectToErrorPage(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, ErrorPagePath+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

// WriteErrorResponse は統一エラーフォーマットでJSONのエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteError はリクエストの種類に応じてエラーを応答する。
// ブラウザにはエラービューへのリダイレクト、APIクライアントにはJSONを返す。
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *model.APIError) {
	if IsBrowserRequest(r) {
		RedirectToErrorPage(w, r, apiErr.Message)
		return
	}
	WriteErrorResponse(w, statusCode, apiErr)
}

// WriteInternalServerError は内部サーバーエラーを応答する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
