package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshStore tracks which refresh token IDs are still valid per user.
type RefreshStore interface {
	Put(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID, tokenID string) (bool, error)
	Delete(ctx context.Context, userID, tokenID string) error
	DeleteAll(ctx context.Context, userID string) error
}

type redisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) RefreshStore {
	return &redisRefreshStore{client: client}
}

func refreshKey(userID, tokenID string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, tokenID)
}

func (s *redisRefreshStore) Put(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(userID, tokenID), "1", ttl).Err()
}

func (s *redisRefreshStore) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, refreshKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRefreshStore) Delete(ctx context.Context, userID, tokenID string) error {
	return s.client.Del(ctx, refreshKey(userID, tokenID)).Err()
}

func (s *redisRefreshStore) DeleteAll(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("refresh:%s:*", userID)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
