package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB はMongoDBクライアントと使用するデータベースをまとめたもの。
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Open はMongoDBクライアントを生成する。
// uriはMongoDBの接続URIを指定する（例: "mongodb://localhost:27017"）。
// mongo.Connectはサーバーへの接続完了を待たないため、実際の接続確認にはPingを使用すること。
func Open(ctx context.Context, uri, dbName string, timeout time.Duration) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Ping はプライマリへの疎通を確認する。ヘルスチェックでも使用する。
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close はクライアントを切断する。
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
