package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fatim-sangare/frontend-test-nan/internal/domain"
)

const sessionKeyPrefix = "session:"

// RedisStore manages sessions in Redis, one hash per session.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a new session store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Token(ctx context.Context, id string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, sessionKeyPrefix+id, keyToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis session token: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) User(ctx context.Context, id string) (domain.User, bool, error) {
	b, err := s.rdb.HGet(ctx, sessionKeyPrefix+id, keyUser).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("redis session user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(b, &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode session user: %w", err)
	}
	return u, true, nil
}

// Set writes token and user in one MULTI/EXEC and refreshes the TTL.
func (s *RedisStore) Set(ctx context.Context, id, token string, user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	key := sessionKeyPrefix + id
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, keyToken, token, keyUser, b)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

// Clear removes the session hash.
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}
