package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// CookieSigner はCookie値にHMAC-SHA256署名を付与・検証する。
// 署名済みの値は "<value>.<signature>" の形式になる。
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner は指定されたシークレットでCookieSignerを生成する。
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign は値に署名を付与して返す。
func (s *CookieSigner) Sign(value string) string {
	return value + "." + s.signature(value)
}

// Verify は署名済みの値を検証し、元の値を返す。
// 形式が不正または署名が一致しない場合はfalseを返す。
func (s *CookieSigner) Verify(signed string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.signature(value))) {
		return "", false
	}
	return value, true
}

func (s *CookieSigner) signature(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
