package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/aliendex/internal/middleware"
	"github.com/hitoshi/aliendex/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, auth model.AuthContext, alienID, body string) (*model.Alien, error)
	Delete(ctx context.Context, auth model.AuthContext, alienID, commentID string) error
}

// CommentHandler はコメントのHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create はエイリアンにコメントを追加する。
// POST /comments/{alienId}
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	alienID := chi.URLParam(r, "alienId")

	fields, err := decodeFields(r, "body")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	alien, err := h.service.Create(r.Context(), middleware.AuthFromContext(r.Context()), alienID, fields["body"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens/"+alienID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alien": toAlienResponse(alien)})
}

// Delete はコメントを削除する。投稿者のみ実行できる。
// DELETE /comments/delete/{alienId}/{commentId}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	alienID := chi.URLParam(r, "alienId")
	commentID := chi.URLParam(r, "commentId")

	if err := h.service.Delete(r.Context(), middleware.AuthFromContext(r.Context()), alienID, commentID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens/"+alienID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
