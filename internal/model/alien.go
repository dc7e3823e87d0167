// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alien はエイリアン記録を表す。
// コメントはAlienドキュメントに埋め込まれ、挿入順を保持する。
type Alien struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Species    string             `bson:"species" json:"species"`
	Planet     string             `bson:"planet" json:"planet"`
	Friendly   bool               `bson:"friendly" json:"friendly"`
	Discovered int                `bson:"discovered" json:"discovered"`

	// Owner は作成時にセッションから設定され、以後変更されない。
	// シードデータではゼロ値（所有者なし）になる。
	Owner primitive.ObjectID `bson:"owner,omitempty" json:"owner,omitempty"`

	Comments []Comment `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FindComment は指定IDのコメントを返す。見つからない場合はnilを返す。
func (a *Alien) FindComment(id primitive.ObjectID) *Comment {
	for i := range a.Comments {
		if a.Comments[i].ID == id {
			return &a.Comments[i]
		}
	}
	return nil
}

// Comment はAlienに埋め込まれたコメントを表す。
// 単独のライフサイクルを持たない。
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Body      string             `bson:"body" json:"body"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// AlienInput はクライアントが書き込み可能なフィールドのみを持つ。
// ownerフィールドを持たないため、クライアント指定の所有者は読み取られない。
type AlienInput struct {
	Species    string `json:"species"`
	Planet     string `json:"planet"`
	Friendly   bool   `json:"friendly"`
	Discovered int    `json:"discovered"`
}
