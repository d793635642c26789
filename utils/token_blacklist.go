package utils

import (
	"context"
	"sync"
	"time"
)

const blacklistPrefix = "dailypost:jwt:blacklist:"

var (
	blacklist   = map[string]time.Time{}
	blacklistMu sync.Mutex
)

// BlacklistToken revokes a token id until the token would have expired.
// Redis is used when enabled so every instance sees the revocation.
func BlacklistToken(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, blacklistPrefix+tokenID, "1", ttl).Err(); err == nil {
			return
		}
	}
	blacklistMu.Lock()
	blacklist[tokenID] = expiresAt
	blacklistMu.Unlock()
}

// IsTokenBlacklisted checks if a token was revoked before natural expiration.
func IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, blacklistPrefix+tokenID).Result()
		if err == nil && n > 0 {
			return true
		}
		// Redis errors fall through to the local list instead of locking admins out.
	}

	blacklistMu.Lock()
	defer blacklistMu.Unlock()
	expiresAt, ok := blacklist[tokenID]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(blacklist, tokenID)
		return false
	}
	return true
}
