package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/aliendex/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testMongoURI はテスト用のMongoDB URIを返す。
// 環境変数 TEST_MONGODB_URI が設定されていればそれを使用し、
// 未設定の場合はdocker-compose上のMongoDBを想定したデフォルト値を返す。
func testMongoURI() string {
	if uri := os.Getenv("TEST_MONGODB_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// setupTestDatabase はテスト用のランダムな名前のデータベースを準備する。
// 接続できない場合はテストをスキップする。終了時にデータベースを削除する。
func setupTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(testMongoURI()).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}

	db := client.Database(fmt.Sprint("aliendex_test_", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoAlienRepo_CreateAndFind(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoAlienRepo(db)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	alien := &model.Alien{
		Species:    "Wookie",
		Planet:     "Kashyyyk",
		Discovered: 1977,
		Owner:      owner,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Create(ctx, alien); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if alien.ID.IsZero() {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.FindByID(ctx, alien.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected alien to be found")
	}
	if got.Species != "Wookie" || got.Planet != "Kashyyyk" || got.Friendly || got.Discovered != 1977 {
		t.Errorf("unexpected alien: %+v", got)
	}
	if got.Owner != owner {
		t.Errorf("Owner = %v, want %v", got.Owner, owner)
	}
	if got.Comments == nil || len(got.Comments) != 0 {
		t.Errorf("Comments = %v, want empty slice", got.Comments)
	}

	missing, err := repo.FindByID(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestMongoAlienRepo_UpdateAndDelete_RequireOwner(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoAlienRepo(db)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	alien := &model.Alien{Species: "Klingon", Planet: "Klingonii", Discovered: 1967, Owner: owner}
	if err := repo.Create(ctx, alien); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	input := model.AlienInput{Species: "Klingon", Planet: "Qo'noS", Friendly: true, Discovered: 1967}

	ok, err := repo.UpdateFields(ctx, alien.ID, primitive.NewObjectID(), input, time.Now())
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if ok {
		t.Error("update with a different owner must not match")
	}

	ok, err = repo.UpdateFields(ctx, alien.ID, owner, input, time.Now())
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if !ok {
		t.Fatal("update with the owner must match")
	}

	got, _ := repo.FindByID(ctx, alien.ID)
	if got.Planet != "Qo'noS" || !got.Friendly {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Owner != owner {
		t.Errorf("Owner changed to %v", got.Owner)
	}

	ok, err = repo.Delete(ctx, alien.ID, primitive.NewObjectID())
	if err != nil || ok {
		t.Errorf("Delete by non-owner = (%v, %v), want (false, nil)", ok, err)
	}

	ok, err = repo.Delete(ctx, alien.ID, owner)
	if err != nil || !ok {
		t.Errorf("Delete by owner = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestMongoAlienRepo_ReplaceAll(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoAlienRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Alien{Species: "Stale"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		aliens := []*model.Alien{
			{Species: "Vulcans", Planet: "Vulcan", Friendly: true, Discovered: 1966},
			{Species: "Kryptonians", Planet: "Krypton", Friendly: true, Discovered: 1933},
		}
		if err := repo.ReplaceAll(ctx, aliens); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}
		for _, a := range aliens {
			if a.ID.IsZero() {
				t.Error("expected IDs to be assigned")
			}
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(List) = %d, want 2", len(all))
	}
}

// 同時に追加されたコメントが失われないこと
func TestMongoAlienRepo_PushComment_ConcurrentAppendsAreNotLost(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoAlienRepo(db)
	ctx := context.Background()

	alien := &model.Alien{Species: "Gallifreyans", Planet: "Gallifrey"}
	if err := repo.Create(ctx, alien); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.PushComment(ctx, alien.ID, model.Comment{
				ID:        primitive.NewObjectID(),
				Body:      fmt.Sprintf("comment %d", i),
				Author:    primitive.NewObjectID(),
				CreatedAt: time.Now(),
			})
			if err != nil {
				t.Errorf("PushComment failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := repo.FindByID(ctx, alien.ID)
	if len(got.Comments) != writers {
		t.Errorf("len(Comments) = %d, want %d", len(got.Comments), writers)
	}
}

func TestMongoAlienRepo_PullComment_RequiresAuthor(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoAlienRepo(db)
	ctx := context.Background()

	alien := &model.Alien{Species: "Vulcans"}
	if err := repo.Create(ctx, alien); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	author := primitive.NewObjectID()
	comment := model.Comment{ID: primitive.NewObjectID(), Body: "hi", Author: author, CreatedAt: time.Now()}
	updated, err := repo.PushComment(ctx, alien.ID, comment)
	if err != nil {
		t.Fatalf("PushComment failed: %v", err)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("len(Comments) = %d, want 1", len(updated.Comments))
	}

	ok, err := repo.PullComment(ctx, alien.ID, comment.ID, primitive.NewObjectID())
	if err != nil || ok {
		t.Errorf("PullComment by non-author = (%v, %v), want (false, nil)", ok, err)
	}

	ok, err = repo.PullComment(ctx, alien.ID, comment.ID, author)
	if err != nil || !ok {
		t.Errorf("PullComment by author = (%v, %v), want (true, nil)", ok, err)
	}

	missing, err := repo.PushComment(ctx, primitive.NewObjectID(), comment)
	if err != nil {
		t.Fatalf("PushComment failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil when the parent alien does not exist")
	}
}

func TestMongoSessionRepo_ExpiredSessions(t *testing.T) {
	db := setupTestDatabase(t)
	repo := NewMongoSessionRepo(db)
	ctx := context.Background()

	now := time.Now()
	live := &model.Session{ID: "live", UserID: primitive.NewObjectID(), ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	dead := &model.Session{ID: "dead", UserID: primitive.NewObjectID(), ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	for _, s := range []*model.Session{live, dead} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.FindByID(ctx, "dead")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != nil {
		t.Error("expired session must not be returned")
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	got, _ = repo.FindByID(ctx, "live")
	if got == nil {
		t.Error("live session should remain")
	}
}
