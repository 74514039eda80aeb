package documents

import (
	"math/rand/v2"
	"sync"
)

// Default id range: [MinID, MaxID). Ids are drawn without any uniqueness check.
const (
	MinID uint64 = 1000
	MaxID uint64 = 9999
)

// IDGenerator assigns ids to new documents.
type IDGenerator interface {
	NextID() uint64
}

// RandomIDs draws ids uniformly from [Min, Max). Two draws may return the same id;
// the second upsert then replaces the first record.
type RandomIDs struct {
	Min, Max uint64
}

// NextID returns a random id in [Min, Max).
func (g RandomIDs) NextID() uint64 {
	lo, hi := g.Min, g.Max
	if hi <= lo {
		lo, hi = MinID, MaxID
	}
	return lo + rand.Uint64N(hi-lo)
}

// SequenceIDs hands out ids from a fixed list, then repeats the last one. Used in tests
// to force collisions.
type SequenceIDs struct {
	mu  sync.Mutex
	ids []uint64
	pos int
}

// NewSequenceIDs returns a generator yielding ids in order.
func NewSequenceIDs(ids ...uint64) *SequenceIDs {
	return &SequenceIDs{ids: ids}
}

// NextID returns the next id in the sequence.
func (g *SequenceIDs) NextID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return MinID
	}
	if g.pos >= len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.pos]
	g.pos++
	return id
}
