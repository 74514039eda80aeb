package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Distance names shared by both backends.
const (
	DistanceCosine = "cosine"
	DistanceDot    = "dot"
)

// MemoryStore is an in-process Store using brute-force search.
// Suitable for tests and offline demos; contents are lost on exit.
type MemoryStore struct {
	collection string
	dimensions int
	distance   string
	points     map[uint64]*Point
	mu         sync.RWMutex
}

// NewMemoryStore creates an in-memory store for one collection.
func NewMemoryStore(collection string, dimensions int, distance string) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	switch distance {
	case "":
		distance = DistanceCosine
	case DistanceCosine, DistanceDot:
	default:
		return nil, fmt.Errorf("unknown distance: %s (supported: cosine, dot)", distance)
	}
	return &MemoryStore{
		collection: collection,
		dimensions: dimensions,
		distance:   distance,
		points:     make(map[uint64]*Point),
	}, nil
}

// EnsureCollection is a no-op; the collection exists from construction.
func (m *MemoryStore) EnsureCollection(ctx context.Context) error {
	return nil
}

// Upsert stores copies of points, replacing existing points with the same ID.
func (m *MemoryStore) Upsert(ctx context.Context, points []*Point) error {
	for _, p := range points {
		if len(p.Vector) != m.dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(p.Vector), m.dimensions)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.ID] = clonePoint(p)
	}
	return nil
}

// Search returns the top-limit points by the configured distance.
func (m *MemoryStore) Search(ctx context.Context, vector []float32, limit int) ([]*ScoredPoint, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || len(m.points) == 0 {
		return nil, nil
	}
	scored := make([]*ScoredPoint, 0, len(m.points))
	for _, p := range m.points {
		scored = append(scored, &ScoredPoint{Point: *clonePoint(p), Score: float32(m.score(vector, p.Vector))})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

func (m *MemoryStore) score(a, b []float32) float64 {
	if m.distance == DistanceDot {
		return InnerProduct(a, b)
	}
	return CosineSimilarity(a, b)
}

// Scroll returns up to limit points ordered by ID, like a Qdrant scroll.
func (m *MemoryStore) Scroll(ctx context.Context, limit int) ([]*Point, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(m.points))
	for id := range m.points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > len(ids) {
		limit = len(ids)
	}
	out := make([]*Point, limit)
	for i := 0; i < limit; i++ {
		out[i] = clonePoint(m.points[ids[i]])
	}
	return out, nil
}

// Get returns the stored points for ids, skipping missing ones.
func (m *MemoryStore) Get(ctx context.Context, ids []uint64) ([]*Point, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Point, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.points[id]; ok {
			out = append(out, clonePoint(p))
		}
	}
	return out, nil
}

// Delete removes points by ID.
func (m *MemoryStore) Delete(ctx context.Context, ids []uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.points, id)
	}
	return nil
}

// Health always succeeds.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Info describes the collection.
func (m *MemoryStore) Info() Info {
	return Info{
		Backend:    "memory",
		Collection: m.collection,
		Dimensions: m.dimensions,
		Distance:   m.distance,
	}
}

// Size returns the number of stored points.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

func clonePoint(p *Point) *Point {
	out := &Point{ID: p.ID, Vector: append([]float32(nil), p.Vector...)}
	if p.Payload != nil {
		out.Payload = make(map[string]interface{}, len(p.Payload))
		for k, v := range p.Payload {
			out.Payload[k] = v
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
