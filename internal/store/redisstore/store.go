// Package redisstore holds the redis-backed presence liveness keys.
// A key existing vouches that its user heart-beat within the stale
// window; expiry does the aging, no sweep required.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	c *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.c.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.c.Close()
}

func presenceKey(userID uint64) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (s *Store) SetPresence(ctx context.Context, userID uint64, status string, ttl time.Duration) error {
	return s.c.Set(ctx, presenceKey(userID), status, ttl).Err()
}

// GetPresence returns the live status and whether the key was present.
func (s *Store) GetPresence(ctx context.Context, userID uint64) (string, bool, error) {
	v, err := s.c.Get(ctx, presenceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) DeletePresence(ctx context.Context, userID uint64) error {
	return s.c.Del(ctx, presenceKey(userID)).Err()
}
