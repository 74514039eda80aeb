// Package embedding turns text into fixed-dimension vectors.
//
// The default embedder is a random stand-in: it keeps the vector store contract
// (every point has a vector of the collection's size) without any semantic meaning.
// A real model can be dropped in behind the Embedder interface.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Provider names accepted by New.
const (
	ProviderRandom = "random"
	ProviderHash   = "hash"
)

// New creates the embedder named by provider. Deterministic providers are wrapped in
// an LRU cache when cacheSize is positive; the random provider never is.
func New(provider string, dimensions, cacheSize int) (Embedder, error) {
	switch provider {
	case ProviderRandom, "":
		return NewRandomEmbedder(dimensions), nil
	case ProviderHash:
		var e Embedder = NewHashEmbedder(dimensions)
		if cacheSize > 0 {
			e = NewCachedEmbedder(e, cacheSize)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: random, hash)", provider)
	}
}

// embedEach calls embed once per text.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
