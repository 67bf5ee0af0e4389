// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package evaluate measures retrieval quality with standard IR metrics:
// Recall@k, Precision@k, and mean reciprocal rank.
package evaluate

import (
	"context"
	"log/slog"

	"github.com/cleardesk-hq/cleardesk/internal/retrieve"
)

// RecallAtK is the fraction of relevant IDs found in the top k
// retrieved. An empty relevant set is vacuously satisfied and scores
// 1.0 rather than being undefined.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 1.0
	}

	relevantSet := toSet(relevant)
	total := len(relevantSet)
	found := 0
	for _, id := range topK(retrieved, k) {
		if _, ok := relevantSet[id]; ok {
			found++
			delete(relevantSet, id)
		}
	}
	return float64(found) / float64(total)
}

// PrecisionAtK is the fraction of the top k retrieved that are
// relevant. Empty retrieval scores 0.0.
func PrecisionAtK(relevant, retrieved []string, k int) float64 {
	top := topK(retrieved, k)
	if len(top) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	found := 0
	for _, id := range top {
		if _, ok := relevantSet[id]; ok {
			found++
		}
	}
	return float64(found) / float64(len(top))
}

// ReciprocalRank is 1 over the 1-based rank of the first relevant ID in
// the retrieved order, or 0.0 when nothing relevant was retrieved.
func ReciprocalRank(relevant, retrieved []string) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	for i, id := range retrieved {
		if _, ok := relevantSet[id]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// QueryResult holds the per-query metrics.
type QueryResult struct {
	Query          string   `json:"query" yaml:"query"`
	Recall         float64  `json:"recall" yaml:"recall"`
	Precision      float64  `json:"precision" yaml:"precision"`
	ReciprocalRank float64  `json:"reciprocal_rank" yaml:"reciprocal_rank"`
	K              int      `json:"k" yaml:"k"`
	RetrievedIDs   []string `json:"retrieved_ids" yaml:"retrieved_ids"`
}

// EvaluateQuery computes all three metrics for one query.
func EvaluateQuery(query string, relevant, retrieved []string, k int) QueryResult {
	return QueryResult{
		Query:          query,
		Recall:         RecallAtK(relevant, retrieved, k),
		Precision:      PrecisionAtK(relevant, retrieved, k),
		ReciprocalRank: ReciprocalRank(relevant, retrieved),
		K:              k,
		RetrievedIDs:   retrieved,
	}
}

// AggregateResult is the arithmetic mean of each metric across queries.
type AggregateResult struct {
	MeanRecall    float64       `json:"mean_recall" yaml:"mean_recall"`
	MeanPrecision float64       `json:"mean_precision" yaml:"mean_precision"`
	MRR           float64       `json:"mrr" yaml:"mrr"`
	TotalQueries  int           `json:"total_queries" yaml:"total_queries"`
	PerQuery      []QueryResult `json:"per_query" yaml:"per_query"`
}

// Aggregate averages per-query results. An empty batch yields all-zero
// aggregates with TotalQueries 0.
func Aggregate(results []QueryResult) AggregateResult {
	agg := AggregateResult{TotalQueries: len(results), PerQuery: results}
	if len(results) == 0 {
		return agg
	}

	for _, r := range results {
		agg.MeanRecall += r.Recall
		agg.MeanPrecision += r.Precision
		agg.MRR += r.ReciprocalRank
	}
	n := float64(len(results))
	agg.MeanRecall /= n
	agg.MeanPrecision /= n
	agg.MRR /= n
	return agg
}

// Searcher is the slice of the retrieval API the evaluator drives.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int, filters map[string]any) (*retrieve.Result, error)
}

// Evaluator runs a ground-truth dataset against a live retriever.
type Evaluator struct {
	searcher Searcher
	k        int
	logger   *slog.Logger
}

// NewEvaluator creates an evaluator. k <= 0 defaults to 5; a nil logger
// falls back to slog.Default.
func NewEvaluator(searcher Searcher, k int, logger *slog.Logger) *Evaluator {
	if k <= 0 {
		k = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{searcher: searcher, k: k, logger: logger}
}

// Run retrieves each dataset query and scores the results against the
// ground truth. Retrieved IDs are the hits' document_id metadata,
// falling back to the passage ID for unlabelled passages.
func (e *Evaluator) Run(ctx context.Context, ds *Dataset) (AggregateResult, error) {
	k := e.k
	if ds.K > 0 {
		k = ds.K
	}

	results := make([]QueryResult, 0, len(ds.Queries))
	for _, q := range ds.Queries {
		res, err := e.searcher.Retrieve(ctx, q.Query, k, nil)
		if err != nil {
			return AggregateResult{}, err
		}

		retrieved := make([]string, 0, len(res.Hits))
		for _, hit := range res.Hits {
			retrieved = append(retrieved, retrievedID(hit.Metadata, hit.ID))
		}

		qr := EvaluateQuery(q.Query, q.RelevantIDs, retrieved, k)
		e.logger.Debug("evaluated query",
			"query", q.Query,
			"recall", qr.Recall,
			"precision", qr.Precision,
		)
		results = append(results, qr)
	}

	agg := Aggregate(results)
	e.logger.Info("evaluation complete",
		"queries", agg.TotalQueries,
		"mean_recall", agg.MeanRecall,
		"mean_precision", agg.MeanPrecision,
		"mrr", agg.MRR,
	)
	return agg, nil
}

func retrievedID(metadata map[string]any, fallback string) string {
	if id, ok := metadata["document_id"].(string); ok && id != "" {
		return id
	}
	return fallback
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func topK(ids []string, k int) []string {
	if k <= 0 || k >= len(ids) {
		if k <= 0 {
			return nil
		}
		return ids
	}
	return ids[:k]
}
