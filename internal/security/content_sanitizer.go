// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizer はコメント本文からHTMLタグを取り除き、プレーンテキストとして保存させる。
// 表示時のエスケープはテンプレート側で行うため、保存値はエスケープしない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizer はコメント本文のサニタイズ機能のインターフェースを定義する。
type CommentSanitizer interface {
	// Sanitize はコメント本文からタグを除去し、前後の空白を除去して返す。
	// タグを含まない本文は空白の除去以外そのまま返す。
	Sanitize(body string) string
}

// commentSanitizer はCommentSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はbluemondayのStrictPolicyを使うCommentSanitizerを生成する。
// script, style等は中身ごと除去され、それ以外のタグは中のテキストだけが残る。
func NewCommentSanitizer() CommentSanitizer {
	return &commentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はコメント本文をサニタイズする。
// bluemondayが出力時に付けるエンティティは元の文字に戻す。
func (s *commentSanitizer) Sanitize(body string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(body)))
}
