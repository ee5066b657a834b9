package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user-1", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.InDelta(t, time.Hour.Seconds(), claims.TTL(time.Now()).Seconds(), 5)

	other, err := GenerateJWT("user-1", secret, time.Hour)
	require.NoError(t, err)
	otherClaims, err := ValidateToken(other, secret)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenID, otherClaims.TokenID)
}

func TestValidateTokenRejects(t *testing.T) {
	_, err := GenerateJWT("", secret, time.Hour)
	assert.Error(t, err)

	token, err := GenerateJWT("user-1", secret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token, []byte("wrong"))
	assert.Error(t, err)

	_, err = ValidateToken("not-a-jwt", secret)
	assert.Error(t, err)

	expired, err := GenerateJWT("user-1", secret, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = ValidateToken(expired, secret)
	assert.Error(t, err)
}

func TestMemoryTokenRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTokenRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, r.Revoke(ctx, "jti-2", 0))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	r := NewRedisTokenRevoker(client)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	assert.True(t, mr.Exists("session:revoked:jti-1"))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
