package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notice kinds.
const (
	KindInfo  = "info"
	KindError = "error"
)

// Notice is a message shown once, on the next page the session renders.
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Notices queues notices per session. Pop returns and removes them all.
type Notices interface {
	Push(ctx context.Context, sessionID string, n Notice) error
	Pop(ctx context.Context, sessionID string) ([]Notice, error)
}

// RedisNotices keeps notices in a Redis list per session.
type RedisNotices struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisNotices returns a new RedisNotices.
func NewRedisNotices(rdb *redis.Client, ttl time.Duration) *RedisNotices {
	return &RedisNotices{rdb: rdb, ttl: ttl}
}

func (n *RedisNotices) Push(ctx context.Context, sessionID string, notice Notice) error {
	b, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	key := keyNotices + sessionID
	_, err = n.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, b)
		pipe.Expire(ctx, key, n.ttl)
		return nil
	})
	return err
}

func (n *RedisNotices) Pop(ctx context.Context, sessionID string) ([]Notice, error) {
	key := keyNotices + sessionID
	var lrange *redis.StringSliceCmd
	_, err := n.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	raw := lrange.Val()
	out := make([]Notice, 0, len(raw))
	for _, s := range raw {
		var notice Notice
		if err := json.Unmarshal([]byte(s), &notice); err != nil {
			continue
		}
		out = append(out, notice)
	}
	return out, nil
}
