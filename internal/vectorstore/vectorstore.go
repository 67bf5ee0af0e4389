// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package vectorstore persists embedded passages and answers
// similarity searches over them. Backends register themselves by name;
// callers construct one through New and depend only on the Store
// interface.
package vectorstore

import (
	"context"
	"fmt"
)

// Passage is one stored unit of retrievable text: a chunk of a document
// together with its embedding and metadata.
type Passage struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]any
}

// Hit is a search result. Score is cosine similarity in [-1, 1]; higher
// means more similar.
type Hit struct {
	Passage
	Score float64
}

// SearchOptions bounds a similarity search.
type SearchOptions struct {
	// TopK caps the number of hits returned.
	TopK int
	// Filters keeps only passages whose metadata matches every entry.
	Filters map[string]any
	// ScoreThreshold drops hits scoring strictly below it when > 0.
	ScoreThreshold float64
}

// Store is the persistence port for embedded passages.
type Store interface {
	// CreateCollection prepares the backing collection. With recreate
	// set, any existing passages are dropped first.
	CreateCollection(ctx context.Context, recreate bool) error
	// Upsert inserts the passages, replacing any with the same ID.
	Upsert(ctx context.Context, passages []Passage) error
	// Search returns the nearest passages to the query vector, best
	// first, after filtering and thresholding.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]Hit, error)
	// DeleteByIDs removes the identified passages. Unknown IDs are not
	// an error.
	DeleteByIDs(ctx context.Context, ids []string) error
	// DeleteByFilter removes every passage whose metadata matches all
	// filters and reports how many were removed.
	DeleteByFilter(ctx context.Context, filters map[string]any) (int, error)
	// Count reports the number of stored passages.
	Count(ctx context.Context) (int, error)
	Close() error
}

// MatchesFilters reports whether metadata satisfies every filter entry.
// Values compare loosely by their string form so that JSON round-trips
// (which widen ints to float64) still match.
func MatchesFilters(metadata, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if got != want && fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
