package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/aliendex/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAlienRepo はMongoDBを使用したエイリアンリポジトリ。
type MongoAlienRepo struct {
	coll *mongo.Collection
}

// NewMongoAlienRepo はMongoAlienRepoを生成する。
func NewMongoAlienRepo(db *mongo.Database) *MongoAlienRepo {
	if db == nil {
		return &MongoAlienRepo{}
	}
	return &MongoAlienRepo{coll: db.Collection(AliensCollection)}
}

// List は全エイリアンをストアの自然順で返す。
func (r *MongoAlienRepo) List(ctx context.Context) ([]*model.Alien, error) {
	return r.find(ctx, bson.M{})
}

// ListByOwner は指定ユーザーが所有するエイリアンを返す。
func (r *MongoAlienRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*model.Alien, error) {
	return r.find(ctx, bson.M{"owner": owner})
}

func (r *MongoAlienRepo) find(ctx context.Context, filter bson.M) ([]*model.Alien, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliens: %w", err)
	}

	aliens := []*model.Alien{}
	if err := cur.All(ctx, &aliens); err != nil {
		return nil, fmt.Errorf("failed to decode aliens: %w", err)
	}
	return aliens, nil
}

// FindByID は指定IDのエイリアンを取得する。見つからない場合はnilを返す。
func (r *MongoAlienRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Alien, error) {
	alien := &model.Alien{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(alien)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find alien: %w", err)
	}
	return alien, nil
}

// Create はエイリアンを作成し、割り当てられたIDを設定する。
func (r *MongoAlienRepo) Create(ctx context.Context, alien *model.Alien) error {
	if alien.Comments == nil {
		alien.Comments = []model.Comment{}
	}

	res, err := r.coll.InsertOne(ctx, alien)
	if err != nil {
		return translateWriteError("failed to create alien", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		alien.ID = oid
	}
	return nil
}

// UpdateFields はクライアント書き込み可能フィールドを置き換える。
// ownerとcommentsには触れない。
func (r *MongoAlienRepo) UpdateFields(ctx context.Context, id, owner primitive.ObjectID, input model.AlienInput, now time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": alienFieldsUpdate(input, now)},
	)
	if err != nil {
		return false, translateWriteError("failed to update alien", err)
	}
	return res.MatchedCount > 0, nil
}

// Delete は所有者が一致する場合に限りエイリアンを削除する。
func (r *MongoAlienRepo) Delete(ctx context.Context, id, owner primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return false, fmt.Errorf("failed to delete alien: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// ReplaceAll は全エイリアンを削除し、指定のエイリアンを挿入する。
// 挿入後、各エイリアンに割り当てられたIDを設定する。
// DeleteManyとInsertManyはトランザクションで囲んでいない(スタンドアロン構成ではトランザクションが使えない)。
// 同時に呼ばれると件数が重複しうるため、呼び出し側で直列化すること。
func (r *MongoAlienRepo) ReplaceAll(ctx context.Context, aliens []*model.Alien) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete aliens: %w", err)
	}
	if len(aliens) == 0 {
		return nil
	}

	docs := make([]interface{}, len(aliens))
	for i, a := range aliens {
		if a.Comments == nil {
			a.Comments = []model.Comment{}
		}
		docs[i] = a
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return translateWriteError("failed to insert aliens", err)
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(aliens) {
			aliens[i].ID = oid
		}
	}
	return nil
}

// PushComment はコメントを$pushでアトミックに追加し、更新後のエイリアンを返す。
// 読み込み・変更・保存のサイクルを経ないため、同時追加でも更新が失われない。
func (r *MongoAlienRepo) PushComment(ctx context.Context, alienID primitive.ObjectID, comment model.Comment) (*model.Alien, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	alien := &model.Alien{}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": alienID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updated_at": comment.CreatedAt},
		},
		opts,
	).Decode(alien)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translateWriteError("failed to push comment", err)
	}
	return alien, nil
}

// PullComment は投稿者が一致するコメントを$pullでアトミックに削除する。
func (r *MongoAlienRepo) PullComment(ctx context.Context, alienID, commentID, author primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": alienID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID, "author": author}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to pull comment: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// alienFieldsUpdate は更新時の$setドキュメントを構築する。
func alienFieldsUpdate(input model.AlienInput, now time.Time) bson.M {
	return bson.M{
		"species":    input.Species,
		"planet":     input.Planet,
		"friendly":   input.Friendly,
		"discovered": input.Discovered,
		"updated_at": now,
	}
}

// compile-time interface check
var _ AlienRepository = (*MongoAlienRepo)(nil)
