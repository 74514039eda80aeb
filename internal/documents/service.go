// Package documents translates user actions into vector store calls: it assigns ids,
// computes vectors, and shapes the {"content": text} payload.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/qdocs/internal/config"
	"github.com/hyperjump/qdocs/internal/embedding"
	"github.com/hyperjump/qdocs/internal/models"
	"github.com/hyperjump/qdocs/internal/vectorstore"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by Get when no record has the id.
	ErrNotFound = errors.New("document not found")
	// ErrNoFreeID is returned by Create when collision avoidance gives up.
	ErrNoFreeID = errors.New("no free document id")
)

// Service performs document operations against one collection.
type Service struct {
	store             vectorstore.Store
	embedder          embedding.Embedder
	ids               IDGenerator
	config            *config.DocumentsConfig
	collisionAttempts int
	logger            *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for debug output (document created, deleted, etc.).
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator replaces the default random id generator.
func WithIDGenerator(g IDGenerator) ServiceOption {
	return func(s *Service) { s.ids = g }
}

// WithCollisionAvoidance makes Create check that a drawn id is unused, redrawing up to
// attempts times. Without it a duplicate id silently overwrites the earlier record.
func WithCollisionAvoidance(attempts int) ServiceOption {
	return func(s *Service) { s.collisionAttempts = attempts }
}

// NewService creates a service. The embedder's dimension must match the collection's.
func NewService(
	store vectorstore.Store,
	embedder embedding.Embedder,
	cfg *config.DocumentsConfig,
	opts ...ServiceOption,
) *Service {
	if cfg == nil {
		cfg = &config.DocumentsConfig{}
	}
	s := &Service{
		store:    store,
		embedder: embedder,
		ids:      RandomIDs{Min: MinID, Max: MaxID},
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Create stores content under a newly drawn id and returns the id.
func (s *Service) Create(ctx context.Context, content string) (id uint64, err error) {
	start := time.Now()
	defer func() { recordOperation("create", start, err) }()

	id, err = s.nextID(ctx)
	if err != nil {
		return 0, err
	}
	if err = s.put(ctx, id, content); err != nil {
		return 0, err
	}
	s.logger.Debug("document created", zap.Uint64("id", id), zap.Int("bytes", len(content)))
	return id, nil
}

func (s *Service) nextID(ctx context.Context) (uint64, error) {
	if s.collisionAttempts <= 0 {
		return s.ids.NextID(), nil
	}
	for attempt := 0; attempt < s.collisionAttempts; attempt++ {
		id := s.ids.NextID()
		existing, err := s.store.Get(ctx, []uint64{id})
		if err != nil {
			return 0, fmt.Errorf("failed to check id %d: %w", id, err)
		}
		if len(existing) == 0 {
			return id, nil
		}
		IDCollisionsTotal.Inc()
		s.logger.Warn("generated document id already in use", zap.Uint64("id", id), zap.Int("attempt", attempt+1))
	}
	return 0, fmt.Errorf("%w after %d attempts", ErrNoFreeID, s.collisionAttempts)
}

// put embeds content and upserts it under id, replacing any existing record.
func (s *Service) put(ctx context.Context, id uint64, content string) error {
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}
	err = s.store.Upsert(ctx, []*vectorstore.Point{{
		ID:      id,
		Vector:  vector,
		Payload: map[string]interface{}{models.ContentKey: content},
	}})
	if err != nil {
		return fmt.Errorf("failed to store document %d: %w", id, err)
	}
	return nil
}

// Search returns up to limit records nearest to the query's vector, best first.
// A non-positive limit uses the configured default. No hits is an empty slice, not an error.
func (s *Service) Search(ctx context.Context, query string, limit int) (hits []*models.SearchHit, err error) {
	start := time.Now()
	defer func() { recordOperation("search", start, err) }()

	limit = models.ClampLimit(limit, s.config.SearchLimit, s.config.MaxLimit)
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	scored, err := s.store.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	hits = make([]*models.SearchHit, 0, len(scored))
	for _, p := range scored {
		hits = append(hits, &models.SearchHit{
			ID:      p.ID,
			Score:   p.Score,
			Content: p.PayloadString(models.ContentKey),
		})
	}
	s.logger.Debug("search", zap.String("query", query), zap.Int("limit", limit), zap.Int("hits", len(hits)))
	return hits, nil
}

// ListAll returns one unordered page of up to limit records. Records beyond the
// page are not reachable; there is no cursor.
func (s *Service) ListAll(ctx context.Context, limit int) (docs []*models.Document, err error) {
	start := time.Now()
	defer func() { recordOperation("list", start, err) }()

	limit = models.ClampLimit(limit, s.config.ListLimit, s.config.MaxLimit)
	points, err := s.store.Scroll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	docs = make([]*models.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, pointToDocument(p))
	}
	return docs, nil
}

// Get returns the record with id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uint64) (doc *models.Document, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			recordOperation("get", start, nil)
			return
		}
		recordOperation("get", start, err)
	}()

	points, err := s.store.Get(ctx, []uint64{id})
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return pointToDocument(points[0]), nil
}

// Delete removes the record with id. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, id uint64) (err error) {
	start := time.Now()
	defer func() { recordOperation("delete", start, err) }()

	if err = s.store.Delete(ctx, []uint64{id}); err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}
	s.logger.Debug("document deleted", zap.Uint64("id", id))
	return nil
}

// Modify replaces the record with id by newContent and a freshly computed vector.
// The id need not exist; Modify then creates it.
func (s *Service) Modify(ctx context.Context, id uint64, newContent string) (err error) {
	start := time.Now()
	defer func() { recordOperation("modify", start, err) }()

	if err = s.put(ctx, id, newContent); err != nil {
		return err
	}
	s.logger.Debug("document modified", zap.Uint64("id", id), zap.Int("bytes", len(newContent)))
	return nil
}

// Info describes the underlying collection.
func (s *Service) Info() vectorstore.Info {
	return s.store.Info()
}

// Health checks the vector store connection.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// Limits returns the configured default search and list limits.
func (s *Service) Limits() (search, list int) {
	return models.ClampLimit(0, s.config.SearchLimit, s.config.MaxLimit),
		models.ClampLimit(0, s.config.ListLimit, s.config.MaxLimit)
}

// MaxLimit returns the cap applied to search and list limits; zero means uncapped.
func (s *Service) MaxLimit() int {
	return s.config.MaxLimit
}

func pointToDocument(p *vectorstore.Point) *models.Document {
	return &models.Document{
		ID:      p.ID,
		Vector:  p.Vector,
		Content: p.PayloadString(models.ContentKey),
	}
}
