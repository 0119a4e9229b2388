package embedder

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmbedding is returned when the embedding call fails; retrieval for
// that query is aborted rather than silently returning stale results
var ErrEmbedding = errors.New("embedding request failed")

// Embedder turns text into a fixed-length vector. Batchable over multiple
// texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds configuration for embedding clients
type Config struct {
	Provider string
	Model    string
	APIKey   string
}

// NewEmbedder creates the embedding client for the configured provider
func NewEmbedder(config Config) (Embedder, error) {
	switch config.Provider {
	case "openai":
		return NewOpenAIEmbedder(config)
	case "gemini":
		return NewGeminiEmbedder(config)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", config.Provider)
	}
}
