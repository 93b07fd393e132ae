package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mbeoliero/coursehub/pkg/constant"
)

// Presence records which users hold at least one live connection
type Presence interface {
	// Add records connId for userId and reports whether it is the user's first connection
	Add(ctx context.Context, userId, connId string) (bool, error)
	// Remove drops connId and reports whether it was the user's last connection
	Remove(ctx context.Context, userId, connId string) (bool, error)
	// OnlineUsers lists the users with a live connection
	OnlineUsers(ctx context.Context) ([]string, error)
	// IsOnline reports whether userId has a live connection
	IsOnline(ctx context.Context, userId string) (bool, error)
}

// MemoryPresence keeps presence in process; it is correct for a single instance only
type MemoryPresence struct {
	mu    sync.RWMutex
	conns map[string]map[string]struct{} // userId -> connIds
}

// NewMemoryPresence creates an empty MemoryPresence
func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{conns: make(map[string]map[string]struct{})}
}

func (p *MemoryPresence) Add(_ context.Context, userId, connId string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userId]
	if !ok {
		set = make(map[string]struct{})
		p.conns[userId] = set
	}
	set[connId] = struct{}{}
	return !ok, nil
}

func (p *MemoryPresence) Remove(_ context.Context, userId, connId string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userId]
	if !ok {
		return false, nil
	}
	delete(set, connId)
	if len(set) == 0 {
		delete(p.conns, userId)
		return true, nil
	}
	return false, nil
}

func (p *MemoryPresence) OnlineUsers(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.conns))
	for id := range p.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *MemoryPresence) IsOnline(_ context.Context, userId string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.conns[userId]
	return ok, nil
}

// The add and remove scripts keep the per-user connection set and the
// online user set consistent across instances.
var (
	presenceAddScript = redis.NewScript(`
redis.call('SADD', KEYS[1], ARGV[1])
return redis.call('SADD', KEYS[2], ARGV[2])
`)
	presenceRemoveScript = redis.NewScript(`
redis.call('SREM', KEYS[1], ARGV[1])
if redis.call('SCARD', KEYS[1]) == 0 then
  return redis.call('SREM', KEYS[2], ARGV[2])
end
return 0
`)
)

// RedisPresence keeps presence in Redis sets shared by every gateway instance
type RedisPresence struct {
	rdb *redis.Client
}

// NewRedisPresence creates a RedisPresence
func NewRedisPresence(rdb *redis.Client) *RedisPresence {
	return &RedisPresence{rdb: rdb}
}

func (p *RedisPresence) connsKey(userId string) string {
	return fmt.Sprintf(constant.RedisKeyOnlineConns(), userId)
}

func (p *RedisPresence) Add(ctx context.Context, userId, connId string) (bool, error) {
	added, err := presenceAddScript.Run(ctx, p.rdb,
		[]string{p.connsKey(userId), constant.RedisKeyOnlineUsers()}, connId, userId).Int()
	if err != nil {
		return false, fmt.Errorf("presence add: %w", err)
	}
	return added == 1, nil
}

func (p *RedisPresence) Remove(ctx context.Context, userId, connId string) (bool, error) {
	removed, err := presenceRemoveScript.Run(ctx, p.rdb,
		[]string{p.connsKey(userId), constant.RedisKeyOnlineUsers()}, connId, userId).Int()
	if err != nil {
		return false, fmt.Errorf("presence remove: %w", err)
	}
	return removed == 1, nil
}

func (p *RedisPresence) OnlineUsers(ctx context.Context) ([]string, error) {
	ids, err := p.rdb.SMembers(ctx, constant.RedisKeyOnlineUsers()).Result()
	if err != nil {
		return nil, fmt.Errorf("presence list: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *RedisPresence) IsOnline(ctx context.Context, userId string) (bool, error) {
	ok, err := p.rdb.SIsMember(ctx, constant.RedisKeyOnlineUsers(), userId).Result()
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return ok, nil
}
