// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/aliendex/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// コレクション名
const (
	AliensCollection   = "aliens"
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

// ErrDuplicateKey は一意制約違反を表す。
var ErrDuplicateKey = errors.New("duplicate key")

// AlienRepository はエイリアンデータの永続化インターフェース。
// 各操作は単一ドキュメントへのアトミックな操作として実装する。
type AlienRepository interface {
	// List は全エイリアンをストアの自然順で返す。
	List(ctx context.Context) ([]*model.Alien, error)

	// ListByOwner は指定ユーザーが所有するエイリアンを返す。
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]*model.Alien, error)

	// FindByID は指定IDのエイリアンを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Alien, error)

	// Create はエイリアンを作成し、割り当てられたIDを設定する。
	Create(ctx context.Context, alien *model.Alien) error

	// UpdateFields はクライアント書き込み可能フィールドを置き換える。
	// フィルタに所有者を含めるため、所有者が一致しない場合は更新されずfalseを返す。
	UpdateFields(ctx context.Context, id, owner primitive.ObjectID, input model.AlienInput, now time.Time) (bool, error)

	// Delete は所有者が一致する場合に限りエイリアンを削除する。
	Delete(ctx context.Context, id, owner primitive.ObjectID) (bool, error)

	// ReplaceAll は全エイリアンを削除し、指定のエイリアンを挿入する。
	// アトミックではないため、同時に呼び出してはならない。
	ReplaceAll(ctx context.Context, aliens []*model.Alien) error

	// PushComment はコメントを$pushでアトミックに追加し、更新後のエイリアンを返す。
	// エイリアンが存在しない場合はnilを返す。
	PushComment(ctx context.Context, alienID primitive.ObjectID, comment model.Comment) (*model.Alien, error)

	// PullComment は投稿者が一致するコメントを$pullでアトミックに削除する。
	// 削除対象がなかった場合はfalseを返す。
	PullComment(ctx context.Context, alienID, commentID, author primitive.ObjectID) (bool, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateKeyを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
