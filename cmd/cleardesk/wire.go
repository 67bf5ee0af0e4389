// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cleardesk-hq/cleardesk/internal/chunk"
	"github.com/cleardesk-hq/cleardesk/internal/config"
	"github.com/cleardesk-hq/cleardesk/internal/embed"
	"github.com/cleardesk-hq/cleardesk/internal/ingest"
	"github.com/cleardesk-hq/cleardesk/internal/pii"
	"github.com/cleardesk-hq/cleardesk/internal/rbac"
	"github.com/cleardesk-hq/cleardesk/internal/retrieve"
	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"

	// Registers the sqlite vector store backend.
	_ "github.com/cleardesk-hq/cleardesk/internal/vectorstore/sqlite"
)

// runtime bundles the wired subsystems a command needs.
type runtime struct {
	cfg       *config.Config
	store     vectorstore.Store
	pipeline  *ingest.Pipeline
	retriever *retrieve.Retriever
	guard     *rbac.Middleware
	logger    *slog.Logger
}

// buildRuntime loads configuration and wires the ingestion and
// retrieval subsystems from it. The caller must Close the runtime.
func buildRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cmd)

	embedder, err := embed.New(ctx, embed.Config{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	dims := cfg.Vector.Dimensions
	if dims == 0 {
		dims = embedder.Dimensions()
	}
	store, err := vectorstore.New(vectorstore.Config{
		Backend:    cfg.Vector.Backend,
		Path:       cfg.Vector.Path,
		Dimensions: dims,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := store.CreateCollection(ctx, false); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("preparing vector store: %w", err)
	}

	chunker, err := chunk.New(cfg.Chunking.Strategy, chunk.Config{
		ChunkSize:    cfg.Chunking.ChunkSize,
		ChunkOverlap: cfg.Chunking.ChunkOverlap,
		MinChunkSize: cfg.Chunking.MinChunkSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating chunker: %w", err)
	}

	retriever := retrieve.New(embedder, store, retrieve.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
		UseReranking:   cfg.Retrieval.UseReranking,
		RerankBoost:    cfg.Retrieval.RerankBoost,
	}, logger)

	return &runtime{
		cfg:       cfg,
		store:     store,
		pipeline:  ingest.NewPipeline(pii.NewDefaultMasker(), chunker, logger),
		retriever: retriever,
		guard:     rbac.NewMiddleware(retriever, rbac.NewService(cfg.RBAC.PublicRoles, logger)),
		logger:    logger,
	}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}
