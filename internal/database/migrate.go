// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationsFS はMongoDBコマンドのJSON配列からなるマイグレーションファイル。
// コレクションの作成（$jsonSchemaバリデータ付き）とインデックス作成を行う。
//
//go:embed migrations/*.json
var migrationsFS embed.FS

// MigrationURL は接続URIのパスにデータベース名を設定したマイグレーション用URLを返す。
// golang-migrateのmongodbドライバはURLのパスから対象データベースを決定する。
func MigrationURL(uri, dbName string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongodb uri: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("unsupported mongodb uri scheme: %q", u.Scheme)
	}
	if dbName == "" {
		dbName = strings.TrimPrefix(u.Path, "/")
	}
	if dbName == "" {
		return "", fmt.Errorf("database name is required")
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
func NewMigrator(uri, dbName string) (*migrate.Migrate, error) {
	migrationURL, err := MigrationURL(uri, dbName)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(uri, dbName string) error {
	m, err := NewMigrator(uri, dbName)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
