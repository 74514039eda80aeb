package embedding

import (
	"context"
	"math/rand/v2"
	"sync"
)

// RandomEmbedder returns independent uniform values in [0, 1) on every call.
// The same text never maps to the same vector, so similarity scores carry no meaning.
type RandomEmbedder struct {
	dimensions int
	mu         sync.Mutex
	rng        *rand.Rand // nil uses the global source
}

// NewRandomEmbedder returns a random embedder backed by the global, goroutine-safe source.
func NewRandomEmbedder(dimensions int) *RandomEmbedder {
	if dimensions <= 0 {
		dimensions = 4
	}
	return &RandomEmbedder{dimensions: dimensions}
}

// NewSeededRandomEmbedder returns a random embedder with a reproducible sequence.
func NewSeededRandomEmbedder(dimensions int, seed uint64) *RandomEmbedder {
	e := NewRandomEmbedder(dimensions)
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return e
}

// Embed ignores text and returns a fresh random vector.
func (e *RandomEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	if e.rng == nil {
		for i := range emb {
			emb[i] = rand.Float32()
		}
		return emb, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range emb {
		emb[i] = e.rng.Float32()
	}
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *RandomEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *RandomEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for RandomEmbedder.
func (e *RandomEmbedder) Close() error {
	return nil
}
