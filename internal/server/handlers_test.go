package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/qdocs/internal/config"
	"github.com/hyperjump/qdocs/internal/documents"
	"github.com/hyperjump/qdocs/internal/embedding"
	"github.com/hyperjump/qdocs/internal/models"
	"github.com/hyperjump/qdocs/internal/vectorstore"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, ids ...uint64) (*Server, *vectorstore.MemoryStore) {
	t.Helper()
	store, err := vectorstore.NewMemoryStore("local_documents_ui", 4, vectorstore.DistanceCosine)
	if err != nil {
		t.Fatal(err)
	}
	embedder := embedding.NewSeededRandomEmbedder(4, 1)
	cfg := &config.DocumentsConfig{SearchLimit: 5, ListLimit: 50, MaxLimit: 100}
	opts := []documents.ServiceOption{}
	if len(ids) > 0 {
		opts = append(opts, documents.WithIDGenerator(documents.NewSequenceIDs(ids...)))
	}
	svc := documents.NewService(store, embedder, cfg, opts...)
	return NewServer(svc, &config.ServerConfig{Port: 8501}, zap.NewNop()), store
}

func seed(t *testing.T, store *vectorstore.MemoryStore, id uint64, content string) {
	t.Helper()
	err := store.Upsert(context.Background(), []*vectorstore.Point{{
		ID:      id,
		Vector:  []float32{0.1, 0.2, 0.3, 0.4},
		Payload: map[string]interface{}{models.ContentKey: content},
	}})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHandleSearch(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, 1234, "hello world")

	body, _ := json.Marshal(map[string]string{"query": "hello"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Query != "hello" || out.Total != 1 || len(out.Results) != 1 {
		t.Fatalf("response: %+v", out)
	}
	if out.Results[0].ID != 1234 || out.Results[0].Content != "hello world" {
		t.Errorf("result: %+v", out.Results[0])
	}
}

func TestHandleSearch_emptyCollection(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte(`{"query":""}`)))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Results []json.RawMessage `json:"results"`
		Total   int               `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Results == nil || len(out.Results) != 0 || out.Total != 0 {
		t.Errorf("want empty results array, got %+v", out)
	}
}

func TestHandleSearch_invalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestDocumentsAPI_lifecycle(t *testing.T) {
	srv, store := newTestServer(t, 4321)
	h := srv.Routes()

	// Create
	r := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader([]byte(`{"content":"hello world"}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 4321 || created.Status != "created" {
		t.Fatalf("create: got %+v", created)
	}

	// Get
	r = httptest.NewRequest(http.MethodGet, "/api/v1/documents/4321", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}
	var doc models.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Content != "hello world" || len(doc.Vector) != 4 {
		t.Errorf("get: got %+v", doc)
	}

	// Modify
	r = httptest.NewRequest(http.MethodPut, "/api/v1/documents/4321", bytes.NewReader([]byte(`{"content":"goodbye"}`)))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("modify status: got %d", w.Code)
	}

	// List
	r = httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=10", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("list status: got %d", w.Code)
	}
	var list models.ListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Limit != 10 || list.Documents[0].Content != "goodbye" {
		t.Errorf("list: got %+v", list)
	}

	// Delete
	r = httptest.NewRequest(http.MethodDelete, "/api/v1/documents/4321", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", w.Code)
	}
	if store.Size() != 0 {
		t.Errorf("store size after delete: got %d", store.Size())
	}

	// Get after delete
	r = httptest.NewRequest(http.MethodGet, "/api/v1/documents/4321", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", w.Code)
	}
}

func TestHandleListDocuments_defaultAndInvalidLimit(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, 1001, "a")
	h := srv.Routes()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	var list models.ListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Limit != 50 || list.Total != 1 {
		t.Errorf("list: got limit=%d total=%d", list.Limit, list.Total)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=abc", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid limit: got %d, want 400", w.Code)
	}
}

func TestHandleListDocuments_limitIsCapped(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, 1001, "a")

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=500", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var list models.ListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Limit != 100 {
		t.Errorf("limit: got %d, want 100", list.Limit)
	}
}

func TestHandleSearch_limit(t *testing.T) {
	srv, store := newTestServer(t)
	for id := uint64(1001); id <= 1007; id++ {
		seed(t, store, id, "doc")
	}

	for _, tt := range []struct {
		body string
		want int
	}{
		{`{"query":"q"}`, 5},
		{`{"query":"q","limit":2}`, 2},
		{`{"query":"q","limit":500}`, 7},
	} {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte(tt.body)))
		w := httptest.NewRecorder()
		srv.handleSearch(w, r)
		var out models.SearchResponse
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if out.Total != tt.want {
			t.Errorf("%s: got %d results, want %d", tt.body, out.Total, tt.want)
		}
	}
}

func TestHandleGetDocument_invalidID(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents/not-a-number", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleDeleteDocument_missingIsOK(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/9998", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Backend != "memory" || out.Collection != "local_documents_ui" || out.Dimensions != 4 {
		t.Errorf("status: got %+v", out)
	}
	if out.SearchLimit != 5 || out.ListLimit != 50 {
		t.Errorf("limits: got search=%d list=%d", out.SearchLimit, out.ListLimit)
	}
}

type unhealthyStore struct {
	*vectorstore.MemoryStore
}

func (unhealthyStore) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHandleStatus_unhealthy(t *testing.T) {
	mem, err := vectorstore.NewMemoryStore("c", 4, vectorstore.DistanceCosine)
	if err != nil {
		t.Fatal(err)
	}
	svc := documents.NewService(unhealthyStore{mem}, embedding.NewRandomEmbedder(4), nil)
	srv := NewServer(svc, &config.ServerConfig{Port: 8501}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("health: got %d", w.Code)
	}

	// Touch a counter so the documents metrics are exported.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)

	r = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("qdocs_documents_operations_total")) {
		t.Error("metrics output missing qdocs_documents_operations_total")
	}
}
