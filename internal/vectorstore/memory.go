// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(cfg Config) (Store, error) {
		return NewMemory(cfg.Dimensions), nil
	})
}

// Compile-time interface check.
var _ Store = (*Memory)(nil)

// Memory is an in-process store for tests, evaluation runs, and
// single-node deployments that do not need persistence.
type Memory struct {
	mu         sync.RWMutex
	passages   map[string]Passage
	dimensions int
}

// NewMemory creates an empty in-memory store.
func NewMemory(dimensions int) *Memory {
	return &Memory{passages: make(map[string]Passage), dimensions: dimensions}
}

func (m *Memory) CreateCollection(_ context.Context, recreate bool) error {
	if !recreate {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passages = make(map[string]Passage)
	return nil
}

func (m *Memory) Upsert(_ context.Context, passages []Passage) error {
	for _, p := range passages {
		if p.ID == "" {
			return cderr.New(cderr.CodeStoreInvalidInput, "passage ID must not be empty")
		}
		if m.dimensions > 0 && len(p.Vector) != m.dimensions {
			return cderr.Errorf(cderr.CodeStoreInvalidInput,
				"passage %s has %d dimensions, store expects %d", p.ID, len(p.Vector), m.dimensions)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range passages {
		m.passages[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, query []float32, opts SearchOptions) ([]Hit, error) {
	if len(query) == 0 {
		return nil, cderr.New(cderr.CodeStoreInvalidInput, "query vector must not be empty")
	}
	if opts.TopK <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.passages))
	for _, p := range m.passages {
		if len(opts.Filters) > 0 && !MatchesFilters(p.Metadata, opts.Filters) {
			continue
		}
		score := CosineSimilarity(query, p.Vector)
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		hits = append(hits, Hit{Passage: p, Score: score})
	}

	// Secondary key keeps ordering deterministic across map iteration.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > opts.TopK {
		hits = hits[:opts.TopK]
	}
	return hits, nil
}

func (m *Memory) DeleteByIDs(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.passages, id)
	}
	return nil
}

func (m *Memory) DeleteByFilter(_ context.Context, filters map[string]any) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, p := range m.passages {
		if MatchesFilters(p.Metadata, filters) {
			delete(m.passages, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages), nil
}

func (m *Memory) Close() error {
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
