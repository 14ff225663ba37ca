package payment

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard records payment ids that have already paid for a registration.
type ReplayGuard interface {
	Claim(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}

const replayKeyPrefix = "payment:used:"

type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReplayGuard keeps claims for ttl; zero keeps them forever.
func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl}
}

func (g *RedisReplayGuard) Claim(ctx context.Context, paymentID string) (bool, error) {
	return g.client.SetNX(ctx, replayKeyPrefix+paymentID, time.Now().Unix(), g.ttl).Result()
}

func (g *RedisReplayGuard) Release(ctx context.Context, paymentID string) error {
	return g.client.Del(ctx, replayKeyPrefix+paymentID).Err()
}

// MemoryReplayGuard is the single-process guard used when Redis is not configured.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]struct{})}
}

func (g *MemoryReplayGuard) Claim(ctx context.Context, paymentID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[paymentID]; ok {
		return false, nil
	}
	g.seen[paymentID] = struct{}{}
	return true, nil
}

func (g *MemoryReplayGuard) Release(ctx context.Context, paymentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, paymentID)
	return nil
}
