package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hitoshi/aliendex/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockCommentService はCommentServiceInterfaceのモック実装。
type mockCommentService struct {
	createFn func(ctx context.Context, auth model.AuthContext, alienID, body string) (*model.Alien, error)
	deleteFn func(ctx context.Context, auth model.AuthContext, alienID, commentID string) error
}

func (m *mockCommentService) Create(ctx context.Context, auth model.AuthContext, alienID, body string) (*model.Alien, error) {
	if m.createFn != nil {
		return m.createFn(ctx, auth, alienID, body)
	}
	return nil, nil
}

func (m *mockCommentService) Delete(ctx context.Context, auth model.AuthContext, alienID, commentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, auth, alienID, commentID)
	}
	return nil
}

func TestCommentHandler_Create_JSON(t *testing.T) {
	alienID := primitive.NewObjectID()
	var gotBody, gotAlienID string
	h := NewCommentHandler(&mockCommentService{
		createFn: func(ctx context.Context, auth model.AuthContext, id, body string) (*model.Alien, error) {
			gotAlienID, gotBody = id, body
			a := sampleAlien(otherUserID)
			a.ID = alienID
			a.Comments = []model.Comment{{ID: primitive.NewObjectID(), Body: body, Author: auth.UserID}}
			return a, nil
		},
	})

	req := newJSONRequest(http.MethodPost, "/comments/"+alienID.Hex(), `{"body":"hello"}`)
	req = withChiURLParams(withAuth(req, testUserID), "alienId", alienID.Hex())
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotAlienID != alienID.Hex() {
		t.Errorf("expected alien id %s, got %s", alienID.Hex(), gotAlienID)
	}
	if gotBody != "hello" {
		t.Errorf("expected body hello, got %q", gotBody)
	}
}

func TestCommentHandler_Create_FormRedirectsToAlien(t *testing.T) {
	alienID := primitive.NewObjectID().Hex()
	var gotBody string
	h := NewCommentHandler(&mockCommentService{
		createFn: func(ctx context.Context, auth model.AuthContext, id, body string) (*model.Alien, error) {
			gotBody = body
			return sampleAlien(otherUserID), nil
		},
	})

	req := newFormRequest(http.MethodPost, "/comments/"+alienID, url.Values{"body": {"from a form"}})
	req = withChiURLParams(withAuth(req, testUserID), "alienId", alienID)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/aliens/"+alienID {
		t.Errorf("expected redirect to /aliens/%s, got %q", alienID, loc)
	}
	if gotBody != "from a form" {
		t.Errorf("expected form body, got %q", gotBody)
	}
}

func TestCommentHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "未ログイン", err: model.NewUnauthorizedError(), wantStatus: http.StatusUnauthorized},
		{name: "エイリアンが存在しない", err: model.NewAlienNotFoundError("x"), wantStatus: http.StatusNotFound},
		{name: "本文が空", err: model.NewValidationError("empty"), wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCommentHandler(&mockCommentService{
				createFn: func(ctx context.Context, auth model.AuthContext, id, body string) (*model.Alien, error) {
					return nil, tt.err
				},
			})

			req := withChiURLParams(newJSONRequest(http.MethodPost, "/comments/x", `{"body":""}`), "alienId", "x")
			w := httptest.NewRecorder()
			h.Create(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestCommentHandler_Delete_Success(t *testing.T) {
	alienID := primitive.NewObjectID().Hex()
	commentID := primitive.NewObjectID().Hex()
	var gotAlienID, gotCommentID string
	h := NewCommentHandler(&mockCommentService{
		deleteFn: func(ctx context.Context, auth model.AuthContext, aID, cID string) error {
			gotAlienID, gotCommentID = aID, cID
			return nil
		},
	})

	req := newJSONRequest(http.MethodDelete, "/comments/delete/"+alienID+"/"+commentID, "")
	req = withChiURLParams(withAuth(req, testUserID), "alienId", alienID, "commentId", commentID)
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if gotAlienID != alienID || gotCommentID != commentID {
		t.Errorf("unexpected ids: %s, %s", gotAlienID, gotCommentID)
	}
}

func TestCommentHandler_Delete_NotAuthor(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{
		deleteFn: func(ctx context.Context, auth model.AuthContext, aID, cID string) error {
			return model.NewNotAuthorError()
		},
	})

	req := newJSONRequest(http.MethodDelete, "/comments/delete/a/c", "")
	req = withChiURLParams(withAuth(req, otherUserID), "alienId", "a", "commentId", "c")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeNotAuthor {
		t.Errorf("expected code %s, got %s", model.ErrCodeNotAuthor, body["code"])
	}
}

func TestCommentHandler_Delete_FormRedirectsToAlien(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{})

	req := newFormRequest(http.MethodDelete, "/comments/delete/a/c", url.Values{})
	req = withChiURLParams(withAuth(req, testUserID), "alienId", "a", "commentId", "c")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/aliens/a" {
		t.Errorf("expected redirect to /aliens/a, got %q", loc)
	}
}
