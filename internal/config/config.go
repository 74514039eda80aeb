// Package config provides configuration loading and structs for the qdocs server.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the vector database address.
const (
	EnvQdrantHost = "QDRANT_HOST"
	EnvQdrantPort = "QDRANT_PORT"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Qdrant      QdrantConfig      `yaml:"qdrant"`
	VectorStore VectorStoreConfig `yaml:"vectorstore"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Documents   DocumentsConfig   `yaml:"documents"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// QdrantConfig holds the connection settings for the Qdrant gRPC endpoint.
type QdrantConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	UseTLS         bool          `yaml:"use_tls"`
	APIKey         string        `yaml:"api_key"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// VectorStoreConfig selects the store backend and describes the collection.
type VectorStoreConfig struct {
	// Backend is "qdrant" (default) or "memory".
	Backend    string `yaml:"backend"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
	// Distance is "cosine" (default) or "dot".
	Distance string `yaml:"distance"`
}

// EmbeddingConfig selects the embedder. Dimensions come from VectorStoreConfig.
type EmbeddingConfig struct {
	// Provider is "random" (default) or "hash".
	Provider  string `yaml:"provider"`
	CacheSize int    `yaml:"cache_size"`
}

// DocumentsConfig holds limits for the document operations.
type DocumentsConfig struct {
	SearchLimit       int  `yaml:"search_limit"`
	ListLimit         int  `yaml:"list_limit"`
	MaxLimit          int  `yaml:"max_limit"`
	AvoidIDCollisions bool `yaml:"avoid_id_collisions"`
}

// Load reads and parses the config file at path, applies environment overrides and defaults.
// Returns an error if the file cannot be read or parsed, or the result is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns a config with only defaults and environment overrides applied.
// Used when no config file exists.
func Default() (*Config, error) {
	var cfg Config
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides the Qdrant address from QDRANT_HOST and QDRANT_PORT.
func ApplyEnv(cfg *Config) error {
	if host, ok := os.LookupEnv(EnvQdrantHost); ok && strings.TrimSpace(host) != "" {
		cfg.Qdrant.Host = strings.TrimSpace(host)
	}
	if raw, ok := os.LookupEnv(EnvQdrantPort); ok && strings.TrimSpace(raw) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvQdrantPort, raw, err)
		}
		cfg.Qdrant.Port = port
	}
	return nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d", c.Qdrant.Port)
	}
	switch c.VectorStore.Backend {
	case BackendQdrant, BackendMemory:
	default:
		return fmt.Errorf("unknown vectorstore backend: %s (supported: qdrant, memory)", c.VectorStore.Backend)
	}
	switch c.VectorStore.Distance {
	case DistanceCosine, DistanceDot:
	default:
		return fmt.Errorf("unknown distance: %s (supported: cosine, dot)", c.VectorStore.Distance)
	}
	if c.VectorStore.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", c.VectorStore.Dimensions)
	}
	if c.Documents.SearchLimit > c.Documents.MaxLimit || c.Documents.ListLimit > c.Documents.MaxLimit {
		return fmt.Errorf("search_limit (%d) and list_limit (%d) must not exceed max_limit (%d)",
			c.Documents.SearchLimit, c.Documents.ListLimit, c.Documents.MaxLimit)
	}
	return nil
}

// Write encodes the config as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
