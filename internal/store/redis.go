package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/maison-counter/internal/tracking"
)

// Counters are bumped inside Lua scripts so the existence check and the increment
// happen in one server-side step. A bare HINCRBY would create missing keys.
var (
	clickScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local destination = redis.call('HGET', KEYS[1], 'destination')
if not destination or destination == '' then
	return redis.error_reply('link has no destination')
end
local clicks = redis.call('HINCRBY', KEYS[1], 'clicks', 1)
return {destination, clicks}
`)

	viewScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('INCR', KEYS[2])
return redis.call('HINCRBY', KEYS[1], 'views', 1)
`)

	saveContentScript = redis.NewScript(`
local previous = tonumber(redis.call('HGET', KEYS[1], 'views') or '0')
redis.call('HSET', KEYS[1], 'views', ARGV[2])
redis.call('SADD', KEYS[3], ARGV[1])
redis.call('INCRBY', KEYS[2], tonumber(ARGV[2]) - previous)
return 1
`)
)

// RedisStore is a Redis implementation of tracking.Repository.
//
// Layout: link:<slug> hash {destination, clicks}, post:<id> hash {views},
// posts and profiles sets, and stats:views holding the running view total.
type RedisStore struct {
	client      *redis.Client
	linkPrefix  string
	postPrefix  string
	postsKey    string
	profilesKey string
	viewsKey    string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:      client,
		linkPrefix:  "link:",
		postPrefix:  "post:",
		postsKey:    "posts",
		profilesKey: "profiles",
		viewsKey:    "stats:views",
	}
}

func (r *RedisStore) IncrementClicks(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	values, err := clickScript.Run(ctx, r.client, []string{r.linkPrefix + string(slug)}).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tracking.ErrNotFound
		}

		return nil, fmt.Errorf("increment clicks: %w", err)
	}

	if len(values) != 2 {
		return nil, fmt.Errorf("increment clicks: unexpected reply %v", values)
	}

	destination, ok := values[0].(string)
	if !ok || destination == "" {
		return nil, fmt.Errorf("increment clicks: missing destination in reply %v", values)
	}

	clicks, ok := values[1].(int64)
	if !ok {
		return nil, fmt.Errorf("increment clicks: corrupt click count in reply %v", values)
	}

	return &tracking.TrackedLink{
		Slug:        slug,
		Destination: destination,
		ClickCount:  clicks,
	}, nil
}

func (r *RedisStore) GetLink(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	fields, err := r.client.HGetAll(ctx, r.linkPrefix+string(slug)).Result()
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}

	if len(fields) == 0 {
		return nil, tracking.ErrNotFound
	}

	clicks, err := strconv.ParseInt(fields["clicks"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("get link: corrupt click count: %w", err)
	}

	if fields["destination"] == "" {
		return nil, fmt.Errorf("get link %s: missing destination", slug)
	}

	return &tracking.TrackedLink{
		Slug:        slug,
		Destination: fields["destination"],
		ClickCount:  clicks,
	}, nil
}

func (r *RedisStore) IncrementViews(ctx context.Context, id tracking.ContentID) (int64, error) {
	views, err := viewScript.Run(ctx, r.client, []string{r.postPrefix + string(id), r.viewsKey}).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, tracking.ErrNotFound
		}

		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

func (r *RedisStore) Stats(ctx context.Context) (*tracking.Stats, error) {
	pipe := r.client.Pipeline()
	posts := pipe.SCard(ctx, r.postsKey)
	profiles := pipe.SCard(ctx, r.profilesKey)
	views := pipe.Get(ctx, r.viewsKey)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	total, err := views.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	return &tracking.Stats{
		TotalPosts: posts.Val(),
		TotalUsers: profiles.Val(),
		TotalViews: total,
	}, nil
}

func (r *RedisStore) SaveLink(ctx context.Context, link *tracking.TrackedLink) error {
	return r.client.HSet(ctx, r.linkPrefix+string(link.Slug), map[string]interface{}{
		"destination": link.Destination,
		"clicks":      link.ClickCount,
	}).Err()
}

func (r *RedisStore) SaveContent(ctx context.Context, item *tracking.ContentItem) error {
	keys := []string{r.postPrefix + string(item.ID), r.viewsKey, r.postsKey}

	return saveContentScript.Run(ctx, r.client, keys, string(item.ID), item.ViewCount).Err()
}

func (r *RedisStore) AddProfile(ctx context.Context, id string) error {
	return r.client.SAdd(ctx, r.profilesKey, id).Err()
}

// Compile-time checks.
var (
	_ tracking.Repository = (*RedisStore)(nil)
	_ Seeder              = (*RedisStore)(nil)
)
