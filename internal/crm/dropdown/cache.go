package dropdown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// labelCache keeps category label maps in process memory (L1) and, when a
// redis client is configured, in redis (L2) so every api server instance
// sees the same labels between reloads.
type labelCache struct {
	logger    *zap.Logger
	l2        redis.Cmdable
	keyPrefix string
	ttl       time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	Labels    map[string]string `json:"labels"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

func newLabelCache(l2 redis.Cmdable, keyPrefix string, ttl time.Duration, logger *zap.Logger) *labelCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &labelCache{
		logger:    logger,
		l2:        l2,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		items:     make(map[string]cacheEntry),
	}
}

// get checks L1, then L2. An L2 hit is promoted to L1.
func (c *labelCache) get(ctx context.Context, category string) (map[string]string, bool) {
	c.mu.RLock()
	entry, ok := c.items[category]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.ExpiresAt) {
		return entry.Labels, true
	}

	if c.l2 == nil {
		return nil, false
	}
	data, err := c.l2.Get(ctx, c.redisKey(category)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("failed to read labels from redis", zap.String("category", category), zap.Error(err))
		return nil, false
	}
	var remote cacheEntry
	if err := json.Unmarshal([]byte(data), &remote); err != nil {
		c.logger.Warn("failed to decode cached labels", zap.String("category", category), zap.Error(err))
		return nil, false
	}
	if !time.Now().Before(remote.ExpiresAt) {
		return nil, false
	}

	c.mu.Lock()
	c.items[category] = remote
	c.mu.Unlock()
	return remote.Labels, true
}

func (c *labelCache) set(ctx context.Context, category string, labels map[string]string) {
	entry := cacheEntry{Labels: labels, ExpiresAt: time.Now().Add(c.ttl)}
	c.mu.Lock()
	c.items[category] = entry
	c.mu.Unlock()

	if c.l2 == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("failed to encode labels", zap.String("category", category), zap.Error(err))
		return
	}
	if err := c.l2.Set(ctx, c.redisKey(category), data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to write labels to redis", zap.String("category", category), zap.Error(err))
	}
}

func (c *labelCache) invalidate(ctx context.Context, category string) error {
	c.mu.Lock()
	delete(c.items, category)
	c.mu.Unlock()

	if c.l2 == nil {
		return nil
	}
	if err := c.l2.Del(ctx, c.redisKey(category)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate labels of %s: %w", category, err)
	}
	return nil
}

func (c *labelCache) redisKey(category string) string {
	return c.keyPrefix + category
}
