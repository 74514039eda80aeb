package vectorstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakePointsClient records requests and serves canned responses.
type fakePointsClient struct {
	collections  []string
	createErr    error
	healthErr    error
	queryResult  []*qdrant.ScoredPoint
	scrollResult []*qdrant.RetrievedPoint
	getResult    []*qdrant.RetrievedPoint

	created  *qdrant.CreateCollection
	upserted *qdrant.UpsertPoints
	queried  *qdrant.QueryPoints
	scrolled *qdrant.ScrollPoints
	got      *qdrant.GetPoints
	deleted  *qdrant.DeletePoints
	closed   bool
}

func (f *fakePointsClient) HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &qdrant.HealthCheckReply{Title: "qdrant", Version: "test"}, nil
}

func (f *fakePointsClient) ListCollections(ctx context.Context) ([]string, error) {
	return f.collections, nil
}

func (f *fakePointsClient) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	return f.createErr
}

func (f *fakePointsClient) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserted = req
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePointsClient) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queried = req
	return f.queryResult, nil
}

func (f *fakePointsClient) Scroll(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
	f.scrolled = req
	return f.scrollResult, nil
}

func (f *fakePointsClient) Get(ctx context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
	f.got = req
	return f.getResult, nil
}

func (f *fakePointsClient) Delete(ctx context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.deleted = req
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePointsClient) Close() error {
	f.closed = true
	return nil
}

func newTestQdrantStore(t *testing.T, fake *fakePointsClient) *QdrantStore {
	t.Helper()
	s, err := newQdrantStore(fake, &QdrantConfig{Collection: "docs", Dimensions: 4}, nil)
	require.NoError(t, err)
	return s
}

func TestQdrantConfig_ApplyDefaults(t *testing.T) {
	cfg := &QdrantConfig{Host: "qdrant.example.com"}
	cfg.ApplyDefaults()

	assert.Equal(t, "qdrant.example.com", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, 50*1024*1024, cfg.MaxMessageSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "local_documents_ui", cfg.Collection)
	assert.Equal(t, 4, cfg.Dimensions)
	assert.Equal(t, DistanceCosine, cfg.Distance)
}

func TestQdrantConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *QdrantConfig
		wantErr bool
	}{
		{"valid", &QdrantConfig{Host: "localhost", Port: 6334, Dimensions: 4, Distance: DistanceCosine}, false},
		{"missing host", &QdrantConfig{Port: 6334, Dimensions: 4, Distance: DistanceCosine}, true},
		{"bad port", &QdrantConfig{Host: "h", Port: 70000, Dimensions: 4, Distance: DistanceCosine}, true},
		{"bad dimensions", &QdrantConfig{Host: "h", Port: 6334, Dimensions: 0, Distance: DistanceCosine}, true},
		{"bad distance", &QdrantConfig{Host: "h", Port: 6334, Dimensions: 4, Distance: "euclid"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQdrantStore_EnsureCollection_Creates(t *testing.T) {
	fake := &fakePointsClient{collections: []string{"other"}}
	s := newTestQdrantStore(t, fake)

	require.NoError(t, s.EnsureCollection(context.Background()))
	require.NotNil(t, fake.created)
	assert.Equal(t, "docs", fake.created.CollectionName)
	params := fake.created.GetVectorsConfig().GetParams()
	require.NotNil(t, params)
	assert.Equal(t, uint64(4), params.GetSize())
	assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())
}

func TestQdrantStore_EnsureCollection_Exists(t *testing.T) {
	fake := &fakePointsClient{collections: []string{"docs"}}
	s := newTestQdrantStore(t, fake)

	require.NoError(t, s.EnsureCollection(context.Background()))
	assert.Nil(t, fake.created, "existing collection must not be recreated")
}

func TestQdrantStore_EnsureCollection_RaceAlreadyExists(t *testing.T) {
	fake := &fakePointsClient{createErr: status.Error(codes.AlreadyExists, "exists")}
	s := newTestQdrantStore(t, fake)
	assert.NoError(t, s.EnsureCollection(context.Background()))
}

func TestQdrantStore_EnsureCollection_Error(t *testing.T) {
	fake := &fakePointsClient{createErr: status.Error(codes.Unavailable, "down")}
	s := newTestQdrantStore(t, fake)
	assert.Error(t, s.EnsureCollection(context.Background()))
}

func TestQdrantStore_Upsert(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)

	err := s.Upsert(context.Background(), []*Point{{
		ID:      4242,
		Vector:  []float32{0.1, 0.2, 0.3, 0.4},
		Payload: map[string]interface{}{"content": "hello world"},
	}})
	require.NoError(t, err)
	require.NotNil(t, fake.upserted)
	assert.Equal(t, "docs", fake.upserted.CollectionName)
	assert.True(t, fake.upserted.GetWait())
	require.Len(t, fake.upserted.Points, 1)
	p := fake.upserted.Points[0]
	assert.Equal(t, uint64(4242), p.GetId().GetNum())
	assert.Equal(t, "hello world", p.GetPayload()["content"].GetStringValue())
}

func TestQdrantStore_Upsert_DimensionMismatch(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)

	err := s.Upsert(context.Background(), []*Point{{ID: 1, Vector: []float32{1}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Nil(t, fake.upserted)
}

func TestQdrantStore_Search(t *testing.T) {
	fake := &fakePointsClient{queryResult: []*qdrant.ScoredPoint{
		{Id: qdrant.NewIDNum(1001), Score: 0.93, Payload: map[string]*qdrant.Value{"content": qdrant.NewValueString("first")}},
		{Id: qdrant.NewIDNum(1002), Score: 0.41, Payload: map[string]*qdrant.Value{"content": qdrant.NewValueString("second")}},
	}}
	s := newTestQdrantStore(t, fake)

	hits, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, uint64(1001), hits[0].ID)
	assert.InDelta(t, 0.93, hits[0].Score, 1e-6)
	assert.Equal(t, "second", hits[1].PayloadString("content"))
	assert.Equal(t, uint64(5), fake.queried.GetLimit())
	assert.True(t, fake.queried.GetWithPayload().GetEnable())
}

func TestQdrantStore_Search_ZeroLimit(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)

	hits, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Nil(t, fake.queried)
}

func TestQdrantStore_Scroll(t *testing.T) {
	fake := &fakePointsClient{scrollResult: []*qdrant.RetrievedPoint{
		{Id: qdrant.NewIDNum(1500), Payload: map[string]*qdrant.Value{"content": qdrant.NewValueString("a")}},
	}}
	s := newTestQdrantStore(t, fake)

	points, err := s.Scroll(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, uint64(1500), points[0].ID)
	assert.Equal(t, uint32(50), fake.scrolled.GetLimit())
}

func TestQdrantStore_Get(t *testing.T) {
	fake := &fakePointsClient{getResult: []*qdrant.RetrievedPoint{
		{Id: qdrant.NewIDNum(7), Payload: map[string]*qdrant.Value{"content": qdrant.NewValueString("seven")}},
	}}
	s := newTestQdrantStore(t, fake)

	points, err := s.Get(context.Background(), []uint64{7})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "seven", points[0].PayloadString("content"))
	require.Len(t, fake.got.Ids, 1)
	assert.Equal(t, uint64(7), fake.got.Ids[0].GetNum())
}

func TestQdrantStore_Delete(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)

	require.NoError(t, s.Delete(context.Background(), []uint64{11, 12}))
	ids := fake.deleted.GetPoints().GetPoints().GetIds()
	require.Len(t, ids, 2)
	assert.Equal(t, uint64(12), ids[1].GetNum())
	assert.True(t, fake.deleted.GetWait())
}

func TestQdrantStore_Delete_Empty(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)
	require.NoError(t, s.Delete(context.Background(), nil))
	assert.Nil(t, fake.deleted)
}

func TestQdrantStore_Health(t *testing.T) {
	fake := &fakePointsClient{healthErr: errors.New("connection refused")}
	s := newTestQdrantStore(t, fake)
	assert.Error(t, s.Health(context.Background()))

	fake.healthErr = nil
	assert.NoError(t, s.Health(context.Background()))
}

func TestQdrantStore_InfoAndClose(t *testing.T) {
	fake := &fakePointsClient{}
	s := newTestQdrantStore(t, fake)

	info := s.Info()
	assert.Equal(t, "qdrant", info.Backend)
	assert.Equal(t, "docs", info.Collection)
	require.NoError(t, s.Close())
	assert.True(t, fake.closed)
}

func TestExtractPointID(t *testing.T) {
	assert.Equal(t, uint64(0), extractPointID(nil))
	assert.Equal(t, uint64(12345), extractPointID(qdrant.NewIDNum(12345)))
	assert.Equal(t, uint64(0), extractPointID(qdrant.NewIDUUID("550e8400-e29b-41d4-a716-446655440000")))
}

func TestConvertToQdrantValue(t *testing.T) {
	assert.Equal(t, "x", convertToQdrantValue("x").GetStringValue())
	assert.Equal(t, "3", convertToQdrantValue(3).GetStringValue())
	assert.Equal(t, "[1 2]", convertToQdrantValue([]int{1, 2}).GetStringValue())
}

func TestExtractPayload(t *testing.T) {
	assert.Nil(t, extractPayload(nil))
	got := extractPayload(map[string]*qdrant.Value{
		"content": qdrant.NewValueString("c"),
		"n":       qdrant.NewValueInt(2),
	})
	assert.Equal(t, "c", got["content"])
	assert.Equal(t, int64(2), got["n"])
}
