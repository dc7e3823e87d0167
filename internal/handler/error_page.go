package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
)

// defaultErrorMessage はerrorパラメータが空の場合に表示するメッセージ。
const defaultErrorMessage = "エラーが発生しました。"

// maxErrorMessageLength はエラーページに表示するメッセージの最大長（バイト）。
const maxErrorMessageLength = 500

var errorPageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>エラー | aliendex</title>
</head>
<body>
<h1>エラー</h1>
<p class="error">{{.Message}}</p>
<p><a href="/aliens">エイリアン一覧へ戻る</a></p>
</body>
</html>
`))

// ErrorPage はクエリパラメータのエラーメッセージをHTMLで表示する。
// GET /error?error=<message>
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("error")
	if message == "" {
		message = defaultErrorMessage
	}
	if len(message) > maxErrorMessageLength {
		message = strings.ToValidUTF8(message[:maxErrorMessageLength], "")
	}

	var buf bytes.Buffer
	if err := errorPageTemplate.Execute(&buf, struct{ Message string }{Message: message}); err != nil {
		slog.Error("failed to render error page", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
