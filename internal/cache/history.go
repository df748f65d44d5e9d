// Package cache provides a Redis-backed read cache for draw history.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/model"
)

// HistoryCache caches paged history responses per user. Invalidation bumps a
// per-user version counter so stale pages simply stop being addressable and
// expire via TTL. A nil *HistoryCache is valid and disables caching.
type HistoryCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewHistoryCache connects to Redis and verifies the connection.
func NewHistoryCache(addr string, ttl time.Duration, log *zap.Logger) (*HistoryCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &HistoryCache{rdb: rdb, ttl: ttl, log: log}, nil
}

// Close releases the underlying client.
func (c *HistoryCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns a cached page if present.
func (c *HistoryCache) Get(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) ([]model.DrawnCard, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.pageKey(ctx, userID, cardType, limit, offset)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []model.DrawnCard
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("cache decode failed", zap.Error(err))
		return nil, false
	}
	return out, true
}

// Set stores a page, best-effort.
func (c *HistoryCache) Set(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int, items []model.DrawnCard) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.pageKey(ctx, userID, cardType, limit, offset), raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.Error(err))
	}
}

// Invalidate drops all cached pages for the user by bumping their version.
func (c *HistoryCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, verKey(userID)).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.Error(err))
	}
}

func (c *HistoryCache) pageKey(ctx context.Context, userID uuid.UUID, cardType model.CardType, limit, offset int) string {
	ver, err := c.rdb.Get(ctx, verKey(userID)).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("draws:%s:v%d:%s:%d:%d", userID, ver, cardType, limit, offset)
}

func verKey(userID uuid.UUID) string {
	return "draws_ver:" + userID.String()
}
