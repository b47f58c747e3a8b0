package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/maison-counter/internal/tracking"
)

// RedisStatsCache wraps a StatsRepository with a short-lived Redis copy of the aggregates.
// The dashboard polls the three aggregate queries; a few seconds of staleness is acceptable.
type RedisStatsCache struct {
	store  tracking.StatsRepository
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStatsCache creates a new Redis-cached stats decorator.
func NewRedisStatsCache(store tracking.StatsRepository, client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{
		store:  store,
		client: client,
		key:    "cache:stats",
		ttl:    ttl,
	}
}

// Stats returns cached aggregates, computing and caching them on a miss.
func (r *RedisStatsCache) Stats(ctx context.Context) (*tracking.Stats, error) {
	if stats, ok := r.getFromCache(ctx); ok {
		return stats, nil
	}

	stats, err := r.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	r.cacheStats(ctx, stats)

	return stats, nil
}

func (r *RedisStatsCache) getFromCache(ctx context.Context) (*tracking.Stats, bool) {
	result, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil || len(result) == 0 {
		return nil, false
	}

	var stats tracking.Stats

	for field, dst := range map[string]*int64{
		"posts": &stats.TotalPosts,
		"users": &stats.TotalUsers,
		"views": &stats.TotalViews,
	} {
		v, err := strconv.ParseInt(result[field], 10, 64)
		if err != nil {
			return nil, false
		}

		*dst = v
	}

	return &stats, true
}

func (r *RedisStatsCache) cacheStats(ctx context.Context, stats *tracking.Stats) {
	pipe := r.client.TxPipeline()

	pipe.HSet(ctx, r.key, map[string]interface{}{
		"posts": stats.TotalPosts,
		"users": stats.TotalUsers,
		"views": stats.TotalViews,
	})
	pipe.Expire(ctx, r.key, r.ttl)

	// Cache failures only cost a recomputation next time.
	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ tracking.StatsRepository = (*RedisStatsCache)(nil)
