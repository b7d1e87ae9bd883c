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

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mgr := NewJWTManager("access-secret-32-chars-long!!!!!", "refresh-secret-32-chars-long!!!!", 15*time.Minute, 7*24*time.Hour)
	lookup := func(ctx context.Context, userID string) (string, error) {
		return "trader_one", nil
	}
	return NewService(mgr, NewRedisRefreshStore(client), lookup), mr
}

func TestService_RefreshRotation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-123", "trader_one")
	require.NoError(t, err)

	t.Run("valid refresh token rotates", func(t *testing.T) {
		newPair, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newPair.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

		claims, err := svc.ValidateAccessToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "trader_one", claims.Username)
	})

	t.Run("used refresh token is revoked", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		assert.Error(t, err)
	})
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-456", "trader_two")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "user-456"))

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.Error(t, err, "refresh token should be revoked after logout")
}
