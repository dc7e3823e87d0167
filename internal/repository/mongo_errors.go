package repository

import (
	"errors"
	"fmt"

	"github.com/hitoshi/aliendex/internal/model"
	"go.mongodb.org/mongo-driver/mongo"
)

// documentValidationFailure は$jsonSchemaバリデータ違反時のサーバーエラーコード。
const documentValidationFailure = 121

// translateWriteError は書き込みエラーをドメインのエラーに変換する。
// スキーマ検証違反はValidationError、一意制約違反はErrDuplicateKeyとなる。
func translateWriteError(msg string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicateKey)
	}
	if isDocumentValidationError(err) {
		return model.NewValidationError("ドキュメントがスキーマ検証に失敗しました")
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isDocumentValidationError はエラーがスキーマ検証違反かどうかを判定する。
func isDocumentValidationError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == documentValidationFailure {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == documentValidationFailure {
				return true
			}
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == documentValidationFailure {
		return true
	}

	return false
}
