// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Birden fazla API instance'ı aynı etkinlik görüntüsünü paylaşsın diye
// Redis tabanlı cache. Tüm key'ler prefix ile namespace'lenir; Flush yalnızca
// bu prefix'e ait key'leri siler (SCAN + DEL), başka uygulamaların verisine
// dokunmaz.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisCache, go-redis tabanlı Cache implementasyonu.
type RedisCache struct {
	client redis.UniversalClient
	logger *log.Logger
	prefix string
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client redis.UniversalClient, logger *log.Logger, prefix string) *RedisCache {
	return &RedisCache{client: client, logger: logger, prefix: prefix}
}

func (r *RedisCache) prefixKey(key string) string {
	return r.prefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Printf("❌ Redis Get hatası [%s]: %v", prefixedKey, err)
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	if err := r.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set hatası [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefixKey(key)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete hatası %v: %v", prefixed, err)
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Flush(ctx context.Context) error {
	var cursor uint64
	deleted := 0

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			deleted += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	r.logger.Printf("⚠️  Redis cache temizlendi (%d key, prefix=%q)", deleted, r.prefix)
	return nil
}
