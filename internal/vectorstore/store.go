// Package vectorstore is the client side of the vector database: a narrow Store
// interface over one collection, backed by Qdrant or by an in-process map.
package vectorstore

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's length differs from the collection's.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Store is one vector collection. Implementations own all persisted state.
type Store interface {
	// EnsureCollection creates the collection when it does not exist yet.
	EnsureCollection(ctx context.Context) error
	// Upsert inserts points, replacing any point with the same ID.
	Upsert(ctx context.Context, points []*Point) error
	// Search returns up to limit points nearest to vector, best first.
	Search(ctx context.Context, vector []float32, limit int) ([]*ScoredPoint, error)
	// Scroll returns up to limit points in no particular ranking.
	Scroll(ctx context.Context, limit int) ([]*Point, error)
	// Get returns the points with the given IDs; missing IDs are skipped.
	Get(ctx context.Context, ids []uint64) ([]*Point, error)
	// Delete removes points by ID. Missing IDs are not an error.
	Delete(ctx context.Context, ids []uint64) error
	Health(ctx context.Context) error
	Info() Info
	Close() error
}

// Point is a stored vector with its payload.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload map[string]interface{}
}

// ScoredPoint is a search hit.
type ScoredPoint struct {
	Point
	Score float32
}

// Info describes the collection a Store is bound to.
type Info struct {
	Backend    string `json:"backend"`
	Collection string `json:"collection"`
	Dimensions int    `json:"dimensions"`
	Distance   string `json:"distance"`
}

// PayloadString returns payload[key] when it is a string.
func (p *Point) PayloadString(key string) string {
	if p == nil || p.Payload == nil {
		return ""
	}
	s, _ := p.Payload[key].(string)
	return s
}
