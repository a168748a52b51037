// Package cache keeps short-lived per-session view state: the dashboard
// snapshot and one-shot notices.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

const (
	keyView    = "view:dashboard:"
	keyNotices = "view:notices:"
)

// Dashboard is the dashboard's local state: the groups and tasks lists as
// last fetched and then mutated.
type Dashboard struct {
	Groups    []domain.Group `json:"groups"`
	Tasks     []domain.Task  `json:"tasks"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Clone returns a copy whose slices can be mutated freely.
func (d Dashboard) Clone() Dashboard {
	out := d
	out.Groups = append([]domain.Group(nil), d.Groups...)
	out.Tasks = append([]domain.Task(nil), d.Tasks...)
	return out
}

// ViewCache stores one Dashboard per session id. Get returns nil on a miss.
type ViewCache interface {
	Get(ctx context.Context, sessionID string) (*Dashboard, error)
	Set(ctx context.Context, sessionID string, d Dashboard) error
	Drop(ctx context.Context, sessionID string) error
}

// RedisViewCache keeps dashboard snapshots in Redis.
type RedisViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisViewCache returns a new RedisViewCache.
func NewRedisViewCache(rdb *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot or nil if miss.
func (c *RedisViewCache) Get(ctx context.Context, sessionID string) (*Dashboard, error) {
	b, err := c.rdb.Get(ctx, keyView+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Dashboard
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Set replaces the snapshot.
func (c *RedisViewCache) Set(ctx context.Context, sessionID string, d Dashboard) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyView+sessionID, b, c.ttl).Err()
}

// Drop removes the snapshot.
func (c *RedisViewCache) Drop(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, keyView+sessionID).Err()
}
