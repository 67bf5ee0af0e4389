// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package evaluate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cleardesk-hq/cleardesk/internal/evaluate"
	"github.com/cleardesk-hq/cleardesk/internal/retrieve"
	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"all relevant found", []string{"a", "b"}, []string{"a", "b", "c"}, 5, 1.0},
		{"empty relevant is vacuously satisfied", nil, []string{"a", "b"}, 5, 1.0},
		{"half found", []string{"a", "b"}, []string{"a", "x", "y"}, 3, 0.5},
		{"relevant outside top k", []string{"a"}, []string{"x", "y", "a"}, 2, 0.0},
		{"nothing retrieved", []string{"a"}, nil, 5, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate.RecallAtK(tt.relevant, tt.retrieved, tt.k))
		})
	}
}

func TestPrecisionAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"one of four", []string{"a"}, []string{"b", "a", "c", "d"}, 4, 0.25},
		{"empty retrieved", []string{"a"}, nil, 4, 0.0},
		{"all precise", []string{"a", "b"}, []string{"a", "b"}, 5, 1.0},
		{"k truncates", []string{"a"}, []string{"a", "x", "y", "z"}, 1, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate.PrecisionAtK(tt.relevant, tt.retrieved, tt.k))
		})
	}
}

func TestReciprocalRank(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		want      float64
	}{
		{"second position", []string{"a"}, []string{"x", "a", "y"}, 0.5},
		{"no relevant retrieved", []string{"a"}, []string{"x", "y"}, 0.0},
		{"first position", []string{"a"}, []string{"a", "x"}, 1.0},
		{"empty relevant", nil, []string{"x"}, 0.0},
		{"empty retrieved", []string{"a"}, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate.ReciprocalRank(tt.relevant, tt.retrieved))
		})
	}
}

func TestEvaluateQuery(t *testing.T) {
	qr := evaluate.EvaluateQuery("leave policy", []string{"a"}, []string{"b", "a"}, 2)

	assert.Equal(t, "leave policy", qr.Query)
	assert.Equal(t, 1.0, qr.Recall)
	assert.Equal(t, 0.5, qr.Precision)
	assert.Equal(t, 0.5, qr.ReciprocalRank)
	assert.Equal(t, 2, qr.K)
}

func TestAggregate(t *testing.T) {
	agg := evaluate.Aggregate([]evaluate.QueryResult{
		{Recall: 1.0, Precision: 0.5, ReciprocalRank: 1.0},
		{Recall: 0.5, Precision: 0.25, ReciprocalRank: 0.0},
	})

	assert.Equal(t, 0.75, agg.MeanRecall)
	assert.Equal(t, 0.375, agg.MeanPrecision)
	assert.Equal(t, 0.5, agg.MRR)
	assert.Equal(t, 2, agg.TotalQueries)
}

func TestAggregate_EmptyBatch(t *testing.T) {
	agg := evaluate.Aggregate(nil)

	assert.Zero(t, agg.MeanRecall)
	assert.Zero(t, agg.MeanPrecision)
	assert.Zero(t, agg.MRR)
	assert.Zero(t, agg.TotalQueries)
}

// fakeSearcher returns canned hits per query.
type fakeSearcher struct {
	hitsByQuery map[string][]vectorstore.Hit
}

func (f *fakeSearcher) Retrieve(_ context.Context, query string, _ int, _ map[string]any) (*retrieve.Result, error) {
	hits := f.hitsByQuery[query]
	return &retrieve.Result{Query: query, Hits: hits, TotalResults: len(hits)}, nil
}

func docHit(id, documentID string) vectorstore.Hit {
	return vectorstore.Hit{Passage: vectorstore.Passage{
		ID:       id,
		Metadata: map[string]any{"document_id": documentID},
	}}
}

func TestEvaluator_Run(t *testing.T) {
	searcher := &fakeSearcher{hitsByQuery: map[string][]vectorstore.Hit{
		"annual leave": {docHit("p1", "doc-leave"), docHit("p2", "doc-expenses")},
		"vpn access":   {docHit("p3", "doc-expenses")},
	}}
	ev := evaluate.NewEvaluator(searcher, 5, nil)

	ds := &evaluate.Dataset{Queries: []evaluate.GroundTruth{
		{Query: "annual leave", RelevantIDs: []string{"doc-leave"}},
		{Query: "vpn access", RelevantIDs: []string{"doc-vpn"}},
	}}
	agg, err := ev.Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 2, agg.TotalQueries)
	assert.Equal(t, 0.5, agg.MeanRecall)     // (1.0 + 0.0) / 2
	assert.Equal(t, 0.25, agg.MeanPrecision) // (0.5 + 0.0) / 2
	assert.Equal(t, 0.5, agg.MRR)            // (1.0 + 0.0) / 2
	require.Len(t, agg.PerQuery, 2)
	assert.Equal(t, []string{"doc-leave", "doc-expenses"}, agg.PerQuery[0].RetrievedIDs)
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.yaml")
	content := `name: hr-smoke
k: 3
queries:
  - query: how many days of annual leave
    relevant_ids: [doc-leave]
  - query: how do I claim expenses
    relevant_ids: [doc-expenses, doc-finance]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := evaluate.LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "hr-smoke", ds.Name)
	assert.Equal(t, 3, ds.K)
	require.Len(t, ds.Queries, 2)
	assert.Equal(t, []string{"doc-expenses", "doc-finance"}, ds.Queries[1].RelevantIDs)
}

func TestLoadDataset_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := evaluate.LoadDataset(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.Equal(t, cderr.CodeEvalDatasetInvalid, cderr.CodeOf(err))
	})

	t.Run("no queries", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: empty\nqueries: []\n"), 0o644))

		_, err := evaluate.LoadDataset(path)
		require.Error(t, err)
		assert.Equal(t, cderr.CodeEvalDatasetInvalid, cderr.CodeOf(err))
	})

	t.Run("blank query text", func(t *testing.T) {
		path := filepath.Join(dir, "blank.yaml")
		require.NoError(t, os.WriteFile(path, []byte("queries:\n  - query: \"  \"\n"), 0o644))

		_, err := evaluate.LoadDataset(path)
		require.Error(t, err)
	})
}
