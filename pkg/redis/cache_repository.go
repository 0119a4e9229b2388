package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned on a cache miss
var ErrKeyNotFound = errors.New("key does not exist")

type CacheRepository struct {
	Client *redis.Client
}

type ICacheRepository interface {
	Set(ctx context.Context, key string, data []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

func NewCacheRepository(client *redis.Client) *CacheRepository {
	log.Println("🚀 Initialized Repository : Redis")
	return &CacheRepository{
		Client: client,
	}
}

func (r *CacheRepository) Set(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	if err := r.Client.Set(ctx, key, data, expiration).Err(); err != nil {
		log.Printf("Error setting Redis key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	} else if err != nil {
		log.Printf("Error getting Redis key %s: %v", key, err)
		return nil, err
	}
	return result, nil
}

func (r *CacheRepository) Del(ctx context.Context, key string) error {
	if _, err := r.Client.Del(ctx, key).Result(); err != nil {
		log.Printf("Error deleting Redis key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *CacheRepository) TTL(ctx context.Context, key string) (time.Duration, error) {
	duration, err := r.Client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return duration, nil
}
