// Package handler はHTTPハンドラーを提供する。
//
// 各エンドポイントはブラウザ向けとAPI向けの2種類の応答を返す。
// ブラウザ向けの変更操作はリダイレクトし、失敗時は /error へリダイレクトする。
// API向けはJSONとステータスコードで応答する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/aliendex/internal/middleware"
	"github.com/hitoshi/aliendex/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// redirect はブラウザ向けに変更操作後のリダイレクトを行う。
// POST後の再送信を避けるため303を使用する。
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外はストアエラーとしてログに記録し、500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteError(w, r, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("store error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteError(w, r, http.StatusInternalServerError, model.NewStoreError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAlienNotFound, model.ErrCodeCommentNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized, model.ErrCodeNotOwner, model.ErrCodeNotAuthor, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUsernameTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeAlienInput はリクエストボディからエイリアンの入力値を読み取る。
// フォーム送信ではチェックボックスの friendly=on をtrueとして扱う。
func decodeAlienInput(r *http.Request) (model.AlienInput, error) {
	if !middleware.IsFormRequest(r) {
		var input model.AlienInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return model.AlienInput{}, model.NewInvalidRequestError()
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return model.AlienInput{}, model.NewInvalidRequestError()
	}

	input := model.AlienInput{
		Species:  strings.TrimSpace(r.PostForm.Get("species")),
		Planet:   strings.TrimSpace(r.PostForm.Get("planet")),
		Friendly: parseCheckbox(r.PostForm.Get("friendly")),
	}
	if raw := strings.TrimSpace(r.PostForm.Get("discovered")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.AlienInput{}, model.NewValidationError("discoveredは整数で指定してください")
		}
		input.Discovered = n
	}
	return input, nil
}

// parseCheckbox はHTMLチェックボックスの値を真偽値に変換する。
func parseCheckbox(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1":
		return true
	}
	return false
}

// decodeFields はJSONまたはフォームから指定されたフィールドの文字列値を読み取る。
func decodeFields(r *http.Request, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))

	if middleware.IsFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return nil, model.NewInvalidRequestError()
		}
		for _, name := range names {
			values[name] = r.PostForm.Get(name)
		}
		return values, nil
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, model.NewInvalidRequestError()
	}
	for _, name := range names {
		if s, ok := body[name].(string); ok {
			values[name] = s
		}
	}
	return values, nil
}
