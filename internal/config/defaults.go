package config

import "time"

// Backends and distances understood by the vector store factory.
const (
	BackendQdrant = "qdrant"
	BackendMemory = "memory"

	DistanceCosine = "cosine"
	DistanceDot    = "dot"

	ProviderRandom = "random"
	ProviderHash   = "hash"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8501
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	// gRPC port; the REST API listens on 6333.
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.DialTimeout == 0 {
		cfg.Qdrant.DialTimeout = 5 * time.Second
	}
	if cfg.Qdrant.RequestTimeout == 0 {
		cfg.Qdrant.RequestTimeout = 30 * time.Second
	}
	if cfg.VectorStore.Backend == "" {
		cfg.VectorStore.Backend = BackendQdrant
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "local_documents_ui"
	}
	if cfg.VectorStore.Dimensions == 0 {
		cfg.VectorStore.Dimensions = 4
	}
	if cfg.VectorStore.Distance == "" {
		cfg.VectorStore.Distance = DistanceCosine
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderRandom
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Documents.SearchLimit == 0 {
		cfg.Documents.SearchLimit = 5
	}
	if cfg.Documents.ListLimit == 0 {
		cfg.Documents.ListLimit = 50
	}
	if cfg.Documents.MaxLimit == 0 {
		cfg.Documents.MaxLimit = 100
	}
}
