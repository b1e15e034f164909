package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// revokedToken menyimpan kapan token yang di-logout memang akan kadaluarsa.
type revokedToken struct {
	ExpiresAt time.Time
}

var revokedTokens *lru.Cache[string, revokedToken]

func init() {
	cache, err := lru.New[string, revokedToken](10000)
	if err != nil {
		panic(err)
	}
	revokedTokens = cache
}

// RevokeToken menandai token sebagai tidak berlaku sampai expiresAt.
func RevokeToken(token string, expiresAt time.Time) {
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(TokenTTL)
	}
	revokedTokens.Add(token, revokedToken{ExpiresAt: expiresAt})
}

func IsTokenRevoked(token string) bool {
	entry, ok := revokedTokens.Get(token)
	if !ok {
		return false
	}
	// Token yang sudah kadaluarsa tidak perlu diingat lagi
	if time.Now().After(entry.ExpiresAt) {
		revokedTokens.Remove(token)
		return false
	}
	return true
}
