package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperjump/qdocs/internal/config"
	"github.com/hyperjump/qdocs/internal/documents"
	"github.com/hyperjump/qdocs/internal/embedding"
	"github.com/hyperjump/qdocs/internal/server"
	"github.com/hyperjump/qdocs/internal/vectorstore"
	"github.com/hyperjump/qdocs/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collisionAttempts is how many ids Create draws before giving up when
// documents.avoid_id_collisions is set.
const collisionAttempts = 10

func newServerCmd(opts *rootOptions) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the web UI and HTTP API",
		Long: `Start the web UI and HTTP API.

The Qdrant address comes from the config file and can be overridden with the
QDRANT_HOST and QDRANT_PORT environment variables.

Examples:
  qdocs server
  qdocs server --config ./config.yaml --debug
  QDRANT_HOST=qdrant.internal qdocs server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts.configPath, debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runServer(configPath string, debug bool) error {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("qdrant", fmt.Sprintf("%s:%d", cfg.Qdrant.Host, cfg.Qdrant.Port)),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	srv := server.NewServer(components.Service, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// Components holds initialized services.
type Components struct {
	Store    vectorstore.Store
	Embedder embedding.Embedder
	Service  *documents.Service
}

// Close releases the store connection and the embedder.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := vectorstore.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	embedder, err := embedding.New(cfg.Embedding.Provider, cfg.VectorStore.Dimensions, cfg.Embedding.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	svcOpts := []documents.ServiceOption{documents.WithLogger(logger)}
	if cfg.Documents.AvoidIDCollisions {
		svcOpts = append(svcOpts, documents.WithCollisionAvoidance(collisionAttempts))
	}
	return &Components{
		Store:    store,
		Embedder: embedder,
		Service:  documents.NewService(store, embedder, &cfg.Documents, svcOpts...),
	}, nil
}
