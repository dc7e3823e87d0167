// Package comment はエイリアンに埋め込まれたコメントの投稿・削除のドメインロジックを提供する。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/aliendex/internal/metrics"
	"github.com/hitoshi/aliendex/internal/model"
	"github.com/hitoshi/aliendex/internal/repository"
	"github.com/hitoshi/aliendex/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service はコメントのサービス層。
// 追加・削除はいずれもリポジトリのアトミックな配列操作で行い、
// 親ドキュメントを読み込んで書き戻すことはしない。
type Service struct {
	repo      repository.AlienRepository
	sanitizer security.CommentSanitizer
	metrics   metrics.DomainRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.AlienRepository,
	sanitizer security.CommentSanitizer,
	recorder metrics.DomainRecorder,
	logger *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Create はエイリアンにコメントを追加し、更新後のエイリアンを返す。
// 未ログインの場合は本文やストアに触れる前にUnauthorizedを返す。
func (s *Service) Create(ctx context.Context, auth model.AuthContext, alienID, body string) (*model.Alien, error) {
	if !auth.LoggedIn {
		return nil, model.NewUnauthorizedError()
	}

	oid, err := primitive.ObjectIDFromHex(alienID)
	if err != nil {
		return nil, model.NewAlienNotFoundError(alienID)
	}

	clean := s.sanitizer.Sanitize(body)
	if clean == "" {
		return nil, model.NewValidationError("コメント本文が空です")
	}

	c := model.Comment{
		ID:        primitive.NewObjectID(),
		Body:      clean,
		Author:    auth.UserID,
		CreatedAt: s.now(),
	}

	alien, err := s.repo.PushComment(ctx, oid, c)
	if err != nil {
		return nil, fmt.Errorf("コメントの追加に失敗しました: %w", err)
	}
	if alien == nil {
		return nil, model.NewAlienNotFoundError(alienID)
	}

	s.metrics.RecordCommentCreated()
	return alien, nil
}

// Delete は投稿者本人の場合に限りコメントを削除する。
func (s *Service) Delete(ctx context.Context, auth model.AuthContext, alienID, commentID string) error {
	if !auth.LoggedIn {
		return model.NewUnauthorizedError()
	}

	aid, err := primitive.ObjectIDFromHex(alienID)
	if err != nil {
		return model.NewAlienNotFoundError(alienID)
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return model.NewCommentNotFoundError(commentID)
	}

	alien, err := s.repo.FindByID(ctx, aid)
	if err != nil {
		return fmt.Errorf("エイリアンの取得に失敗しました: %w", err)
	}
	if alien == nil {
		return model.NewAlienNotFoundError(alienID)
	}

	c := alien.FindComment(cid)
	if c == nil {
		return model.NewCommentNotFoundError(commentID)
	}
	if c.Author != auth.UserID {
		s.metrics.RecordAuthorizationDenied("comment_delete")
		s.logger.Warn("comment author check failed",
			slog.String("alien_id", alienID),
			slog.String("comment_id", commentID),
			slog.String("user_id", auth.UserID.Hex()),
		)
		return model.NewNotAuthorError()
	}

	removed, err := s.repo.PullComment(ctx, aid, cid, auth.UserID)
	if err != nil {
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}
	if !removed {
		// 読み込み後に別リクエストで削除された
		return model.NewCommentNotFoundError(commentID)
	}

	s.metrics.RecordCommentDeleted()
	return nil
}
