// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package retrieve orchestrates indexing and semantic search: it embeds
// chunks into the vector store and answers queries against it, with an
// optional lexical re-ranking pass.
package retrieve

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cleardesk-hq/cleardesk/internal/chunk"
	"github.com/cleardesk-hq/cleardesk/internal/embed"
	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultTopK        = 5
	DefaultRerankBoost = 0.1
)

// Config tunes retrieval behaviour.
type Config struct {
	// TopK is the default number of hits per query.
	TopK int
	// ScoreThreshold drops hits below this similarity when > 0.
	ScoreThreshold float64
	// UseReranking enables the lexical-overlap re-ranking pass.
	UseReranking bool
	// RerankBoost is the per-matched-word score multiplier increment.
	RerankBoost float64
}

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.RerankBoost <= 0 {
		c.RerankBoost = DefaultRerankBoost
	}
	return c
}

// Result is the answer to one retrieval query.
type Result struct {
	Query          string
	Hits           []vectorstore.Hit
	TotalResults   int
	FiltersApplied map[string]any
}

// Retriever wires an embedder to a vector store.
type Retriever struct {
	embedder embed.Embedder
	store    vectorstore.Store
	cfg      Config
	logger   *slog.Logger
}

// New creates a retriever. A nil logger falls back to slog.Default.
func New(embedder embed.Embedder, store vectorstore.Store, cfg Config, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// IndexChunks embeds all chunks in one batch call and upserts them with
// fresh IDs. Each passage carries the chunk's own metadata plus
// chunk_index and, when documentID is set, document_id. An empty input
// returns 0 without touching either port.
func (r *Retriever) IndexChunks(ctx context.Context, chunks []chunk.Chunk, documentID string) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	// Chunk texts are never blank, so the batch must map one-to-one.
	if len(vectors) != len(chunks) {
		return 0, cderr.Errorf(cderr.CodeEmbedUpstreamFailure,
			"embedding produced %d vectors for %d chunks", len(vectors), len(chunks))
	}

	passages := make([]vectorstore.Passage, len(chunks))
	for i, c := range chunks {
		metadata := make(map[string]any, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			metadata[k] = v
		}
		metadata["chunk_index"] = c.Index
		if documentID != "" {
			metadata["document_id"] = documentID
		}

		passages[i] = vectorstore.Passage{
			ID:       uuid.NewString(),
			Text:     c.Text,
			Vector:   vectors[i].Values,
			Metadata: metadata,
		}
	}

	if err := r.store.Upsert(ctx, passages); err != nil {
		return 0, err
	}

	r.logger.Debug("indexed chunks",
		"count", len(passages),
		"document_id", documentID,
	)
	return len(passages), nil
}

// Retrieve embeds the query and searches the store. topK <= 0 takes the
// configured default; filters are an exact-match conjunction over
// passage metadata.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, filters map[string]any) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, cderr.New(cderr.CodeRetrieveQueryInvalid, "query must not be empty")
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.store.Search(ctx, vector.Values, vectorstore.SearchOptions{
		TopK:           topK,
		Filters:        filters,
		ScoreThreshold: r.cfg.ScoreThreshold,
	})
	if err != nil {
		return nil, err
	}

	if r.cfg.UseReranking {
		hits = rerank(query, hits, r.cfg.RerankBoost)
	}

	r.logger.Debug("retrieved passages", "top_k", topK, "results", len(hits))
	return &Result{
		Query:          query,
		Hits:           hits,
		TotalResults:   len(hits),
		FiltersApplied: filters,
	}, nil
}

// DeleteDocument removes every passage indexed under the document ID
// and reports how many were deleted.
func (r *Retriever) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if strings.TrimSpace(documentID) == "" {
		return 0, cderr.New(cderr.CodeRetrieveQueryInvalid, "document ID must not be empty",
			cderr.FieldDocumentID(documentID))
	}

	deleted, err := r.store.DeleteByFilter(ctx, map[string]any{"document_id": documentID})
	if err != nil {
		return 0, err
	}

	r.logger.Info("deleted document", "document_id", documentID, "passages", deleted)
	return deleted, nil
}

// Stats summarises the index state and active configuration.
type Stats struct {
	PassageCount int     `json:"passage_count"`
	TopK         int     `json:"top_k"`
	Reranking    bool    `json:"reranking"`
	RerankBoost  float64 `json:"rerank_boost"`
}

func (r *Retriever) Stats(ctx context.Context) (Stats, error) {
	count, err := r.store.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		PassageCount: count,
		TopK:         r.cfg.TopK,
		Reranking:    r.cfg.UseReranking,
		RerankBoost:  r.cfg.RerankBoost,
	}, nil
}

// rerank multiplies each hit's score by 1 + boost per query word found
// in the hit text (case-insensitive substring match), then re-sorts
// descending. The sort is stable, so ties keep their prior order; no
// hit is ever dropped.
func rerank(query string, hits []vectorstore.Hit, boost float64) []vectorstore.Hit {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 || len(hits) == 0 {
		return hits
	}

	for i := range hits {
		text := strings.ToLower(hits[i].Text)
		matches := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				matches++
			}
		}
		hits[i].Score *= 1 + boost*float64(matches)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits
}
