package vectorstore

import (
	"context"
	"fmt"

	"github.com/hyperjump/qdocs/internal/config"
	"go.uber.org/zap"
)

// Backend names accepted by New.
const (
	BackendQdrant = "qdrant"
	BackendMemory = "memory"
)

// New creates the store selected by cfg.VectorStore.Backend and ensures its collection exists.
// The caller owns the returned store and must Close it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vs := cfg.VectorStore

	var store Store
	switch vs.Backend {
	case BackendQdrant, "":
		qs, err := NewQdrantStore(&QdrantConfig{
			Host:           cfg.Qdrant.Host,
			Port:           cfg.Qdrant.Port,
			UseTLS:         cfg.Qdrant.UseTLS,
			APIKey:         cfg.Qdrant.APIKey,
			DialTimeout:    cfg.Qdrant.DialTimeout,
			RequestTimeout: cfg.Qdrant.RequestTimeout,
			Collection:     vs.Collection,
			Dimensions:     vs.Dimensions,
			Distance:       vs.Distance,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		store = qs
	case BackendMemory:
		ms, err := NewMemoryStore(vs.Collection, vs.Dimensions, vs.Distance)
		if err != nil {
			return nil, err
		}
		store = ms
	default:
		return nil, fmt.Errorf("unknown vectorstore backend: %s (supported: qdrant, memory)", vs.Backend)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to ensure collection %s: %w", vs.Collection, err)
	}
	logger.Info("vector store ready",
		zap.String("backend", store.Info().Backend),
		zap.String("collection", vs.Collection),
		zap.Int("dimensions", vs.Dimensions),
	)
	return store, nil
}
