package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// pointsClient is the subset of *qdrant.Client used by QdrantStore.
type pointsClient interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Close() error
}

// QdrantConfig configures the Qdrant gRPC store.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port (NOT the HTTP REST port 6333).
	Port int

	UseTLS bool
	APIKey string

	// MaxMessageSize bounds gRPC messages in both directions.
	// Default: 50MB
	MaxMessageSize int

	// DialTimeout bounds the initial health check.
	// Default: 5 seconds
	DialTimeout time.Duration

	// RequestTimeout bounds every individual request.
	// Default: 30 seconds
	RequestTimeout time.Duration

	Collection string
	Dimensions int
	Distance   string
}

// DefaultQdrantConfig returns defaults for a local Qdrant.
func DefaultQdrantConfig() *QdrantConfig {
	return &QdrantConfig{
		Host:           "localhost",
		Port:           6334,
		MaxMessageSize: 50 * 1024 * 1024,
		DialTimeout:    5 * time.Second,
		RequestTimeout: 30 * time.Second,
		Collection:     "local_documents_ui",
		Dimensions:     4,
		Distance:       DistanceCosine,
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	defaults := DefaultQdrantConfig()

	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaults.DialTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.Collection == "" {
		c.Collection = defaults.Collection
	}
	if c.Dimensions == 0 {
		c.Dimensions = defaults.Dimensions
	}
	if c.Distance == "" {
		c.Distance = defaults.Distance
	}
}

// Validate validates the configuration.
func (c *QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Port)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Dimensions)
	}
	if _, err := qdrantDistance(c.Distance); err != nil {
		return err
	}
	return nil
}

func qdrantDistance(name string) (qdrant.Distance, error) {
	switch name {
	case DistanceCosine:
		return qdrant.Distance_Cosine, nil
	case DistanceDot:
		return qdrant.Distance_Dot, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("unknown distance: %s (supported: cosine, dot)", name)
	}
}

// QdrantStore implements Store on a single Qdrant collection.
type QdrantStore struct {
	client   pointsClient
	config   *QdrantConfig
	distance qdrant.Distance
	logger   *zap.Logger
}

// NewQdrantStore dials Qdrant and verifies the connection with a health check.
// It does not create the collection; call EnsureCollection for that.
func NewQdrantStore(cfg *QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	if cfg == nil {
		cfg = DefaultQdrantConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	qdrantConfig := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize),
				grpc.MaxCallSendMsgSize(cfg.MaxMessageSize),
			),
		},
	}
	if !cfg.UseTLS {
		qdrantConfig.GrpcOptions = append(qdrantConfig.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qdrantConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	store, err := newQdrantStore(client, cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	logger.Info("connecting to qdrant", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
	if err := store.Health(ctx); err != nil {
		_ = client.Close()
		logger.Error("qdrant health check failed",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("qdrant connection established", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
	return store, nil
}

func newQdrantStore(client pointsClient, cfg *QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	cfg.ApplyDefaults()
	distance, err := qdrantDistance(cfg.Distance)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QdrantStore{client: client, config: cfg, distance: distance, logger: logger}, nil
}

func (s *QdrantStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

// Health performs a health check on the Qdrant connection.
func (s *QdrantStore) Health(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// EnsureCollection lists collections and creates the configured one when missing.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range names {
		if name == s.config.Collection {
			return nil
		}
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.config.Dimensions),
			Distance: s.distance,
		}),
	})
	if err != nil {
		// Another process may have created it between list and create.
		if st, ok := status.FromError(err); ok && st.Code() == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", s.config.Collection, err)
	}
	s.logger.Info("collection created",
		zap.String("collection", s.config.Collection),
		zap.Int("dimensions", s.config.Dimensions),
		zap.String("distance", s.config.Distance),
	)
	return nil
}

// Upsert inserts or replaces points and waits for the write to be applied.
func (s *QdrantStore) Upsert(ctx context.Context, points []*Point) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		if len(p.Vector) != s.config.Dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(p.Vector), s.config.Dimensions)
		}
		qdrantPoints[i] = convertToQdrantPoint(p)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search performs similarity search and returns hits best first.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]*ScoredPoint, error) {
	if len(vector) != s.config.Dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), s.config.Dimensions)
	}
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	scored := make([]*ScoredPoint, len(res))
	for i, r := range res {
		scored[i] = convertFromQdrantScoredPoint(r)
	}
	return scored, nil
}

// Scroll returns the first page of up to limit points. The next-page offset is discarded.
func (s *QdrantStore) Scroll(ctx context.Context, limit int) ([]*Point, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.config.Collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll points: %w", err)
	}
	return convertRetrievedPoints(res), nil
}

// Get retrieves points by ID.
func (s *QdrantStore) Get(ctx context.Context, ids []uint64) ([]*Point, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.config.Collection,
		Ids:            toPointIDs(ids),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get points: %w", err)
	}
	return convertRetrievedPoints(res), nil
}

// Delete removes points by ID. Qdrant treats missing IDs as a no-op.
func (s *QdrantStore) Delete(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: toPointIDs(ids),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// Info describes the collection.
func (s *QdrantStore) Info() Info {
	return Info{
		Backend:    "qdrant",
		Collection: s.config.Collection,
		Dimensions: s.config.Dimensions,
		Distance:   s.config.Distance,
	}
}

// Close closes the client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func toPointIDs(ids []uint64) []*qdrant.PointId {
	out := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		out[i] = qdrant.NewIDNum(id)
	}
	return out
}

func convertToQdrantPoint(p *Point) *qdrant.PointStruct {
	payload := make(map[string]*qdrant.Value, len(p.Payload))
	for k, v := range p.Payload {
		payload[k] = convertToQdrantValue(v)
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(p.ID),
		Vectors: qdrant.NewVectors(p.Vector...),
		Payload: payload,
	}
}

// convertToQdrantValue stores payload values as strings; the only payload field is text.
func convertToQdrantValue(v interface{}) *qdrant.Value {
	if str, ok := v.(string); ok {
		return qdrant.NewValueString(str)
	}
	return qdrant.NewValueString(fmt.Sprintf("%v", v))
}

func convertFromQdrantScoredPoint(p *qdrant.ScoredPoint) *ScoredPoint {
	return &ScoredPoint{
		Point: Point{
			ID:      extractPointID(p.GetId()),
			Vector:  extractVectorOutput(p.GetVectors()),
			Payload: extractPayload(p.GetPayload()),
		},
		Score: p.GetScore(),
	}
}

func convertRetrievedPoints(points []*qdrant.RetrievedPoint) []*Point {
	out := make([]*Point, len(points))
	for i, p := range points {
		out[i] = &Point{
			ID:      extractPointID(p.GetId()),
			Vector:  extractVectorOutput(p.GetVectors()),
			Payload: extractPayload(p.GetPayload()),
		}
	}
	return out
}

// extractPointID returns the numeric id. UUID ids (written by other tools) map to 0.
func extractPointID(id *qdrant.PointId) uint64 {
	if id == nil {
		return 0
	}
	return id.GetNum()
}

func extractVectorOutput(vectors *qdrant.VectorsOutput) []float32 {
	if vectors == nil {
		return nil
	}
	if vec := vectors.GetVector(); vec != nil {
		if dense := vec.GetDense(); dense != nil {
			return dense.GetData()
		}
	}
	return nil
}

func extractPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}
	result := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

func extractValue(v *qdrant.Value) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	default:
		return nil
	}
}

var _ Store = (*QdrantStore)(nil)
