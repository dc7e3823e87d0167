// Package alien はエイリアン記録の一覧・取得・作成・更新・削除のドメインロジックを提供する。
package alien

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/aliendex/internal/metrics"
	"github.com/hitoshi/aliendex/internal/model"
	"github.com/hitoshi/aliendex/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service はエイリアン記録のサービス層。
// 更新・削除はAuthContextの所有者判定を通過した場合のみ実行する。
type Service struct {
	repo    repository.AlienRepository
	metrics metrics.DomainRecorder
	logger  *slog.Logger
	now     func() time.Time

	// seedMu はプロセス内のSeedを直列化する。ReplaceAllは削除と挿入が別操作のため。
	seedMu sync.Mutex
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewService(repo repository.AlienRepository, recorder metrics.DomainRecorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// List は全エイリアンを返す。
func (s *Service) List(ctx context.Context) ([]*model.Alien, error) {
	aliens, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("エイリアン一覧の取得に失敗しました: %w", err)
	}
	return aliens, nil
}

// ListMine はログイン中のユーザーが所有するエイリアンを返す。
func (s *Service) ListMine(ctx context.Context, auth model.AuthContext) ([]*model.Alien, error) {
	if !auth.LoggedIn {
		return nil, model.NewUnauthorizedError()
	}

	aliens, err := s.repo.ListByOwner(ctx, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("所有エイリアン一覧の取得に失敗しました: %w", err)
	}
	return aliens, nil
}

// Seed は全エイリアンを削除し、固定の5件を投入する。
// 何度実行しても結果は同じ5件になる。
// 同一プロセス内の同時呼び出しは直列に実行される。複数プロセスからの同時実行は想定しない。
func (s *Service) Seed(ctx context.Context) ([]*model.Alien, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	now := s.now()
	fixtures := SeedFixtures()
	aliens := make([]*model.Alien, len(fixtures))
	for i, in := range fixtures {
		aliens[i] = &model.Alien{
			Species:    in.Species,
			Planet:     in.Planet,
			Friendly:   in.Friendly,
			Discovered: in.Discovered,
			Comments:   []model.Comment{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	if err := s.repo.ReplaceAll(ctx, aliens); err != nil {
		return nil, fmt.Errorf("シードデータの投入に失敗しました: %w", err)
	}

	s.metrics.RecordSeed(len(aliens))
	s.logger.Info("aliens seeded", slog.Int("count", len(aliens)))
	return aliens, nil
}

// Get は指定IDのエイリアンを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Alien, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.NewAlienNotFoundError(id)
	}

	alien, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("エイリアンの取得に失敗しました: %w", err)
	}
	if alien == nil {
		return nil, model.NewAlienNotFoundError(id)
	}
	return alien, nil
}

// Create はエイリアンを作成する。
// 所有者は常にAuthContextのユーザーIDに設定され、クライアントからは指定できない。
func (s *Service) Create(ctx context.Context, auth model.AuthContext, input model.AlienInput) (*model.Alien, error) {
	if !auth.LoggedIn {
		return nil, model.NewUnauthorizedError()
	}

	now := s.now()
	alien := &model.Alien{
		Species:    input.Species,
		Planet:     input.Planet,
		Friendly:   input.Friendly,
		Discovered: input.Discovered,
		Owner:      auth.UserID,
		Comments:   []model.Comment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, alien); err != nil {
		return nil, fmt.Errorf("エイリアンの作成に失敗しました: %w", err)
	}

	s.metrics.RecordAlienCreated()
	return alien, nil
}

// Update は所有者が一致する場合に限り、クライアント書き込み可能フィールドを置き換える。
func (s *Service) Update(ctx context.Context, auth model.AuthContext, id string, input model.AlienInput) error {
	alien, err := s.loadOwned(ctx, auth, id, "alien_update")
	if err != nil {
		return err
	}

	matched, err := s.repo.UpdateFields(ctx, alien.ID, alien.Owner, input, s.now())
	if err != nil {
		return fmt.Errorf("エイリアンの更新に失敗しました: %w", err)
	}
	if !matched {
		// 読み込み後に削除された
		return model.NewAlienNotFoundError(id)
	}
	return nil
}

// Delete は所有者が一致する場合に限りエイリアンを削除する。
func (s *Service) Delete(ctx context.Context, auth model.AuthContext, id string) error {
	alien, err := s.loadOwned(ctx, auth, id, "alien_delete")
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, alien.ID, alien.Owner)
	if err != nil {
		return fmt.Errorf("エイリアンの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewAlienNotFoundError(id)
	}

	s.metrics.RecordAlienDeleted()
	return nil
}

// loadOwned はエイリアンを取得し、AuthContextのユーザーが所有者であることを確認する。
// 存在しない場合は所有者を参照する前にNotFoundを返す。
func (s *Service) loadOwned(ctx context.Context, auth model.AuthContext, id, operation string) (*model.Alien, error) {
	alien, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.Owns(alien.Owner) {
		s.metrics.RecordAuthorizationDenied(operation)
		s.logger.Warn("ownership check failed",
			slog.String("operation", operation),
			slog.String("alien_id", id),
			slog.String("user_id", userIDForLog(auth)),
		)
		return nil, model.NewNotOwnerError()
	}
	return alien, nil
}

func userIDForLog(auth model.AuthContext) string {
	if !auth.LoggedIn {
		return ""
	}
	return auth.UserID.Hex()
}
