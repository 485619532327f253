package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisFlashPrefix = "mediaweb:flash:"

// RedisFlashStore keeps each session's notifications in a Redis list.
type RedisFlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFlashStore(client *redis.Client, ttl time.Duration) *RedisFlashStore {
	if ttl <= 0 {
		ttl = defaultFlashTTL
	}
	return &RedisFlashStore{client: client, ttl: ttl}
}

func (s *RedisFlashStore) Push(ctx context.Context, session string, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := redisFlashPrefix + session
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

func (s *RedisFlashStore) Pop(ctx context.Context, session string) ([]Notification, error) {
	key := redisFlashPrefix + session
	pipe := s.client.TxPipeline()
	values := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop notifications: %w", err)
	}

	raw := values.Val()
	items := make([]Notification, 0, len(raw))
	for _, value := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(value), &n); err != nil {
			continue
		}
		items = append(items, n)
	}
	return items, nil
}
