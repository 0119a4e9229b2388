package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"datachat-ai/pkg/redis"
)

// CachedEmbedder wraps an Embedder with a Redis-backed cache so rebuilt
// indexes over unchanged documents do not repeat remote embedding calls.
// Cache failures are logged and ignored; the underlying embedder remains
// the source of truth.
type CachedEmbedder struct {
	inner      Embedder
	cache      redis.ICacheRepository
	model      string
	expiration time.Duration
}

func NewCachedEmbedder(inner Embedder, cache redis.ICacheRepository, model string, expiration time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		cache:      cache,
		model:      model,
		expiration: expiration,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if data, err := c.cache.Get(ctx, key); err == nil {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil {
			return vector, nil
		}
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, vector)
	return vector, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))
	missingTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if data, err := c.cache.Get(ctx, c.cacheKey(text)); err == nil {
			var vector []float32
			if err := json.Unmarshal(data, &vector); err == nil {
				vectors[i] = vector
				continue
			}
		}
		missing = append(missing, i)
		missingTexts = append(missingTexts, text)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		vectors[i] = fresh[j]
		c.store(ctx, c.cacheKey(texts[i]), fresh[j])
	}
	return vectors, nil
}

func (c *CachedEmbedder) store(ctx context.Context, key string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.expiration); err != nil {
		log.Printf("CachedEmbedder -> failed to cache embedding: %v", err)
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	digest := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", c.model, hex.EncodeToString(digest[:]))
}
