package gateway

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/pkg/constant"
)

func newRedisPresence(t *testing.T) (*RedisPresence, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisPresence(rdb), mr
}

func testPresenceTransitions(t *testing.T, p Presence) {
	ctx := context.Background()

	first, err := p.Add(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = p.Add(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.False(t, first, "second connection is not a transition")

	_, err = p.Add(ctx, "u2", "c3")
	require.NoError(t, err)

	ids, err := p.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	last, err := p.Remove(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, last)

	online, err := p.IsOnline(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, online)

	last, err = p.Remove(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.True(t, last)

	online, err = p.IsOnline(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)

	last, err = p.Remove(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.False(t, last, "removing an unknown connection is not a transition")

	ids, err = p.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids)
}

func TestMemoryPresence(t *testing.T) {
	testPresenceTransitions(t, NewMemoryPresence())
}

func TestRedisPresence(t *testing.T) {
	p, mr := newRedisPresence(t)
	testPresenceTransitions(t, p)

	members, err := mr.Members(constant.RedisKeyOnlineUsers())
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, members)
	assert.False(t, mr.Exists(p.connsKey("u1")))
}

func TestRedisPresenceSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	a, mr := newRedisPresence(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	b := NewRedisPresence(rdb)

	first, err := a.Add(ctx, "u1", "on-a")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = b.Add(ctx, "u1", "on-b")
	require.NoError(t, err)
	assert.False(t, first)

	last, err := a.Remove(ctx, "u1", "on-a")
	require.NoError(t, err)
	assert.False(t, last, "still connected through the other instance")

	last, err = b.Remove(ctx, "u1", "on-b")
	require.NoError(t, err)
	assert.True(t, last)
}
