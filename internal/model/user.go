// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User はサービス利用ユーザーを表す。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Username  string             `bson:"username"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

// AuthContext はリクエストごとの認証状態を表す。
// セッションミドルウェアが構築し、サービス層の各操作に明示的に渡される。
type AuthContext struct {
	LoggedIn bool
	UserID   primitive.ObjectID
	Username string
}

// Anonymous は未ログイン状態のAuthContextを返す。
func Anonymous() AuthContext {
	return AuthContext{}
}

// AuthFromSession はセッションからAuthContextを生成する。
func AuthFromSession(s *Session) AuthContext {
	if s == nil || s.UserID.IsZero() {
		return Anonymous()
	}
	return AuthContext{
		LoggedIn: true,
		UserID:   s.UserID,
		Username: s.Username,
	}
}

// Owns は指定された所有者IDが現在のユーザーと一致するかを判定する。
// 未ログイン、または所有者がゼロ値の場合は常にfalse。
func (a AuthContext) Owns(owner primitive.ObjectID) bool {
	if !a.LoggedIn || a.UserID.IsZero() || owner.IsZero() {
		return false
	}
	return owner == a.UserID
}
