package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/aliendex/internal/middleware"
	"github.com/hitoshi/aliendex/internal/model"
)

// AlienServiceInterface はエイリアンハンドラーが必要とするサービスインターフェース。
type AlienServiceInterface interface {
	List(ctx context.Context) ([]*model.Alien, error)
	ListMine(ctx context.Context, auth model.AuthContext) ([]*model.Alien, error)
	Seed(ctx context.Context) ([]*model.Alien, error)
	Get(ctx context.Context, id string) (*model.Alien, error)
	Create(ctx context.Context, auth model.AuthContext, input model.AlienInput) (*model.Alien, error)
	Update(ctx context.Context, auth model.AuthContext, id string, input model.AlienInput) error
	Delete(ctx context.Context, auth model.AuthContext, id string) error
}

// AlienHandler はエイリアン管理のHTTPハンドラー。
type AlienHandler struct {
	service AlienServiceInterface
}

// NewAlienHandler はAlienHandlerを生成する。
func NewAlienHandler(service AlienServiceInterface) *AlienHandler {
	return &AlienHandler{service: service}
}

// alienResponse はエイリアン情報のAPIレスポンス。
type alienResponse struct {
	ID         string            `json:"id"`
	Species    string            `json:"species"`
	Planet     string            `json:"planet"`
	Friendly   bool              `json:"friendly"`
	Discovered int               `json:"discovered"`
	Owner      string            `json:"owner,omitempty"`
	Comments   []commentResponse `json:"comments"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// commentResponse はコメント情報のAPIレスポンス。
type commentResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// List は全エイリアンを返す。
// GET /aliens
func (h *AlienHandler) List(w http.ResponseWriter, r *http.Request) {
	aliens, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliens": toAlienResponses(aliens)})
}

// ListMine はログインユーザーが所有するエイリアンを返す。
// GET /aliens/mine
func (h *AlienHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	aliens, err := h.service.ListMine(r.Context(), middleware.AuthFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliens": toAlienResponses(aliens)})
}

// Seed はエイリアンコレクションを固定データで置き換える。
// POST /aliens/seed
func (h *AlienHandler) Seed(w http.ResponseWriter, r *http.Request) {
	aliens, err := h.service.Seed(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliens": toAlienResponses(aliens)})
}

// Get はエイリアン詳細を返す。
// GET /aliens/{id}
func (h *AlienHandler) Get(w http.ResponseWriter, r *http.Request) {
	alien, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alien": toAlienResponse(alien)})
}

// Create はエイリアンを作成する。所有者はセッションのユーザーになる。
// POST /aliens
func (h *AlienHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeAlienInput(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	alien, err := h.service.Create(r.Context(), middleware.AuthFromContext(r.Context()), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"alien": toAlienResponse(alien)})
}

// Update はエイリアンのフィールドを更新する。所有者のみ実行できる。
// PUT /aliens/{id}
func (h *AlienHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input, err := decodeAlienInput(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), middleware.AuthFromContext(r.Context()), id, input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens/"+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete はエイリアンを削除する。所有者のみ実行できる。
// DELETE /aliens/{id}
func (h *AlienHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.AuthFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if middleware.IsBrowserRequest(r) {
		redirect(w, r, "/aliens")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toAlienResponses(aliens []*model.Alien) []alienResponse {
	res := make([]alienResponse, 0, len(aliens))
	for _, a := range aliens {
		res = append(res, toAlienResponse(a))
	}
	return res
}

func toAlienResponse(alien *model.Alien) alienResponse {
	res := alienResponse{
		ID:         alien.ID.Hex(),
		Species:    alien.Species,
		Planet:     alien.Planet,
		Friendly:   alien.Friendly,
		Discovered: alien.Discovered,
		Comments:   make([]commentResponse, 0, len(alien.Comments)),
		CreatedAt:  alien.CreatedAt,
		UpdatedAt:  alien.UpdatedAt,
	}
	if !alien.Owner.IsZero() {
		res.Owner = alien.Owner.Hex()
	}
	for _, c := range alien.Comments {
		res.Comments = append(res.Comments, commentResponse{
			ID:        c.ID.Hex(),
			Body:      c.Body,
			Author:    c.Author.Hex(),
			CreatedAt: c.CreatedAt,
		})
	}
	return res
}
