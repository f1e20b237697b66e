package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Store caches JSON-encodable values. Get reports false on a miss.
type Store interface {
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// MemoryStore adapts a Memory cache to Store.
type MemoryStore struct {
	mem *Memory
}

func NewMemoryStore(mem *Memory) *MemoryStore {
	return &MemoryStore{mem: mem}
}

func (s *MemoryStore) Get(_ context.Context, key string, target interface{}) (bool, error) {
	b, ok := s.mem.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, target); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mem.Set(key, b, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mem.Delete(keys...)
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mem.DeletePrefix(prefix)
	return nil
}

// RedisStore keeps values in Redis as JSON strings.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, defaultTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: defaultTTL}
}

func (s *RedisStore) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	cached, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(cached, target); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.Delete(ctx, keys...)
}
