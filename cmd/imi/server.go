package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/imi/internal/config"
	"github.com/hyperjump/imi/internal/embedding"
	"github.com/hyperjump/imi/internal/indexer"
	"github.com/hyperjump/imi/internal/search"
	"github.com/hyperjump/imi/internal/server"
	"github.com/hyperjump/imi/internal/vector"
	"github.com/hyperjump/imi/internal/watcher"
	"github.com/hyperjump/imi/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewServerCmd starts the HTTP server.
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the embedding and search server",
		Long: `Load the tokenizer and ONNX model, start watching the configured note
directories, and serve the HTTP API until interrupted.

With --mock the server uses a deterministic hash embedder instead of the
model, which is useful for developing clients without downloading artifacts.`,
		Args: cobra.NoArgs,
		RunE: runServer,
	}
	cmd.Flags().Bool("mock", false, "use the hash embedder instead of the ONNX model")
	cmd.Flags().String("host", "", "override server.host")
	cmd.Flags().Int("port", 0, "override server.port")
	return cmd
}

// components holds the long-lived pieces the server is built from.
type components struct {
	Embedder embedding.Embedder
	Engine   *search.Engine
	Indexer  *indexer.Indexer
	Watcher  *watcher.Watcher
}

// buildComponents wires the embedder, index, engine, note indexer and watcher.
func buildComponents(cfg *config.Config, logger *zap.Logger, mock bool) (*components, error) {
	var emb embedding.Embedder
	if mock {
		logger.Warn("using mock embedder; results are not semantic")
		emb = embedding.NewMock(&cfg.Embedding, logger)
	} else {
		e, err := embedding.NewFromConfig(&cfg.Embedding, logger)
		if err != nil {
			return nil, err
		}
		emb = e
	}

	engine := search.NewEngine(emb, vector.NewIndex(), &cfg.Search, search.WithLogger(logger))
	notes := indexer.NewIndexer(engine, cfg.Watch.Extensions, indexer.WithLogger(logger))
	watch := watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.RecursiveOrDefault(),
		notes,
		watcher.WithLogger(logger),
	)
	return &components{
		Embedder: emb,
		Engine:   engine,
		Indexer:  notes,
		Watcher:  watch,
	}, nil
}

// Close stops the watcher and releases the model.
func (c *components) Close() error {
	c.Watcher.Stop()
	return c.Embedder.Close()
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	debugFlag, _ := cmd.Flags().GetBool("debug")
	debug := cfg.Debug || debugFlag
	mock, _ := cmd.Flags().GetBool("mock")

	logger, err := utils.NewLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("config_path", configPath),
		zap.Bool("debug", debug),
		zap.Bool("mock", mock),
	)

	comps, err := buildComponents(cfg, logger, mock)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Warn("close embedder failed", zap.Error(err))
		}
	}()

	ctx := cmd.Context()
	if err := comps.Watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	go comps.Watcher.SyncExistingFiles()

	srv := server.NewServer(comps.Engine, cfg, logger, server.WithWatcher(comps.Watcher, configPath))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
