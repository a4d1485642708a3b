package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an abandoned session's buckets linger.
const DefaultSessionTTL = 24 * time.Hour

// RedisStore keeps buckets under a per-session key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL and namespaces keys by sessionID.
func NewRedisStore(redisURL, sessionID string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, sessionID, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &RedisStore{
		client: client,
		prefix: "wbplan:session:" + sessionID + ":",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan session keys: %w", err)
	}

	return keys, nil
}

// LoadAll implements Store.
func (s *RedisStore) LoadAll(ctx context.Context) (map[string][]byte, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(keys))

	for _, k := range keys {
		data, err := s.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("load bucket %s: %w", k, err)
		}

		out[strings.TrimPrefix(k, s.prefix)] = data
	}

	return out, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save bucket %s: %w", name, err)
	}

	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear session keys: %w", err)
	}

	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
