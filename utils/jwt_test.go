package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypost/dailypost/config"
)

func useSecret(t *testing.T, secret string) {
	t.Helper()
	config.Set(config.AppConfig{JWTSecret: secret})
}

func TestToken_RoundTrip(t *testing.T) {
	useSecret(t, "first-secret")

	token, expiresAt, err := GenerateToken("admin", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestToken_Rejected(t *testing.T) {
	useSecret(t, "first-secret")
	token, _, err := GenerateToken("admin", time.Hour)
	require.NoError(t, err)
	expired, _, err := GenerateToken("admin", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(expired)
	assert.Error(t, err)
	_, err = ParseToken("not-a-jwt")
	assert.Error(t, err)

	useSecret(t, "rotated-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestBlacklist_InMemory(t *testing.T) {
	SetRedis(nil)
	ctx := context.Background()

	BlacklistToken(ctx, "live", time.Now().Add(time.Minute))
	BlacklistToken(ctx, "already-expired", time.Now().Add(-time.Minute))

	assert.True(t, IsTokenBlacklisted(ctx, "live"))
	assert.False(t, IsTokenBlacklisted(ctx, "already-expired"))
	assert.False(t, IsTokenBlacklisted(ctx, "never-seen"))
}

func TestBlacklist_Redis(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	BlacklistToken(ctx, "tid", time.Now().Add(time.Minute))
	assert.True(t, mr.Exists(blacklistPrefix+"tid"))
	assert.True(t, IsTokenBlacklisted(ctx, "tid"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, IsTokenBlacklisted(ctx, "tid"))
}
