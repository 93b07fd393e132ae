package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/pkg/errcode"
)

var alice = Identity{UserId: "u-1", Email: "alice@example.com", Role: "student"}

func TestGenerateTokenPair_KeysAreSeparate(t *testing.T) {
	pub, err := GenerateKey()
	require.NoError(t, err)
	priv, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, pub, priv)

	pair, err := GenerateTokenPair(alice, pub, priv, time.Hour, 2*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(pair.AccessToken, pub)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserId)
	assert.Equal(t, "student", claims.Role)

	_, err = ParseToken(pair.AccessToken, priv)
	assert.ErrorIs(t, err, errcode.ErrTokenInvalid)

	_, err = ParseToken(pair.RefreshToken, priv)
	assert.NoError(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(alice, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	e, ok := errcode.From(err)
	require.True(t, ok)
	assert.Equal(t, errcode.ErrTokenExpired.Code, e.Code)
	assert.Equal(t, 410, e.Status)
}

func TestPeekUserId(t *testing.T) {
	token, err := GenerateToken(alice, "secret", time.Hour)
	require.NoError(t, err)

	userId, err := PeekUserId(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userId)

	_, err = PeekUserId("not-a-token")
	assert.ErrorIs(t, err, errcode.ErrTokenInvalid)
}

func TestValidateToken_UserMismatch(t *testing.T) {
	token, err := GenerateToken(alice, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret", "u-2")
	assert.ErrorIs(t, err, errcode.ErrTokenInvalid)
}

func TestTokenStore_UsedTracking(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewTokenStore(rdb, 1)
	ctx := context.Background()

	used, err := store.IsUsed(ctx, "u-1", "rt-1")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, store.MarkUsed(ctx, "u-1", "rt-1"))
	used, err = store.IsUsed(ctx, "u-1", "rt-1")
	require.NoError(t, err)
	assert.True(t, used)

	require.NoError(t, store.ForceLogoutUser(ctx, "u-1"))
	used, err = store.IsUsed(ctx, "u-1", "rt-1")
	require.NoError(t, err)
	assert.False(t, used)
}
