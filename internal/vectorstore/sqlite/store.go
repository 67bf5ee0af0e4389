// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package sqlite provides the SQLite-backed vector store, using the
// sqlite-vec extension for k-nearest-neighbor search.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
	vectorstore.RegisterBackend("sqlite", func(cfg vectorstore.Config) (vectorstore.Store, error) {
		return New(cfg.Path, cfg.Dimensions)
	})
}

// Compile-time interface check.
var _ vectorstore.Store = (*Store)(nil)

// Store persists passages in SQLite: embeddings in a vec0 virtual table
// and text plus metadata in a companion table joined by ID.
type Store struct {
	db         *sql.DB
	dimensions int
}

// New opens (or creates) the database at path and initialises both
// tables. The vec0 table is declared with cosine distance so search
// scores convert directly to cosine similarity.
func New(path string, dimensions int) (*Store, error) {
	if path == "" {
		return nil, cderr.New(cderr.CodeStoreInvalidInput, "sqlite backend requires a database path")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "opening sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "pinging sqlite db")
	}
	if err := migrate(db, dimensions); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dimensions: dimensions}, nil
}

func migrate(db *sql.DB, dimensions int) error {
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS passages USING vec0(id TEXT PRIMARY KEY, embedding float[%d] distance_metric=cosine)`,
		dimensions,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "creating passages virtual table")
	}

	const dataDDL = `
CREATE TABLE IF NOT EXISTS passage_data (
	id       TEXT PRIMARY KEY,
	text     TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
)`
	if _, err := db.Exec(dataDDL); err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "creating passage_data table")
	}
	return nil
}

// CreateCollection re-runs the migration; with recreate set it drops
// both tables first.
func (s *Store) CreateCollection(ctx context.Context, recreate bool) error {
	if recreate {
		for _, ddl := range []string{`DROP TABLE IF EXISTS passages`, `DROP TABLE IF EXISTS passage_data`} {
			if _, err := s.db.ExecContext(ctx, ddl); err != nil {
				return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "dropping collection")
			}
		}
	}
	return migrate(s.db, s.dimensions)
}

func (s *Store) Upsert(ctx context.Context, passages []vectorstore.Passage) error {
	for _, p := range passages {
		if p.ID == "" {
			return cderr.New(cderr.CodeStoreInvalidInput, "passage ID must not be empty")
		}
		if len(p.Vector) != s.dimensions {
			return cderr.Errorf(cderr.CodeStoreInvalidInput,
				"passage %s has %d dimensions, store expects %d", p.ID, len(p.Vector), s.dimensions)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "beginning upsert transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range passages {
		blob, err := sqlite_vec.SerializeFloat32(p.Vector)
		if err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "serializing embedding")
		}

		metaJSON := []byte("{}")
		if len(p.Metadata) > 0 {
			metaJSON, err = json.Marshal(p.Metadata)
			if err != nil {
				return cderr.Wrap(err, cderr.CodeStoreInvalidInput, "marshalling passage metadata")
			}
		}

		// vec0 does not support ON CONFLICT; delete first for upsert.
		if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE id = ?`, p.ID); err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "deleting existing passage "+p.ID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO passages(id, embedding) VALUES (?, ?)`, p.ID, blob); err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "inserting passage "+p.ID)
		}

		const dataQ = `INSERT INTO passage_data(id, text, metadata) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET text = excluded.text, metadata = excluded.metadata`
		if _, err := tx.ExecContext(ctx, dataQ, p.ID, p.Text, string(metaJSON)); err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "upserting passage data "+p.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "committing upsert")
	}
	return nil
}

// Search runs a KNN query and converts vec0's cosine distance to
// similarity (1 - distance). Metadata filters are applied after the KNN
// pass, so the query over-fetches to keep filtered result sets full.
func (s *Store) Search(ctx context.Context, query []float32, opts vectorstore.SearchOptions) ([]vectorstore.Hit, error) {
	if len(query) == 0 {
		return nil, cderr.New(cderr.CodeStoreInvalidInput, "query vector must not be empty")
	}
	if opts.TopK <= 0 {
		return nil, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "serializing query vector")
	}

	k := opts.TopK
	if len(opts.Filters) > 0 {
		k *= 4
	}

	const q = `SELECT p.id, p.distance, d.text, COALESCE(d.metadata, '{}')
FROM passages p
LEFT JOIN passage_data d ON d.id = p.id
WHERE p.embedding MATCH ? AND k = ?
ORDER BY p.distance`

	rows, err := s.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "searching passages")
	}
	defer func() { _ = rows.Close() }()

	var hits []vectorstore.Hit
	for rows.Next() {
		var (
			hit      vectorstore.Hit
			distance float64
			text     sql.NullString
			metaStr  string
		)
		if err := rows.Scan(&hit.ID, &distance, &text, &metaStr); err != nil {
			return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "scanning search result")
		}
		hit.Text = text.String
		hit.Score = 1 - distance

		if metaStr != "" && metaStr != "{}" {
			if err := json.Unmarshal([]byte(metaStr), &hit.Metadata); err != nil {
				return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "unmarshalling passage metadata")
			}
		}

		if len(opts.Filters) > 0 && !vectorstore.MatchesFilters(hit.Metadata, opts.Filters) {
			continue
		}
		if opts.ScoreThreshold > 0 && hit.Score < opts.ScoreThreshold {
			continue
		}

		hits = append(hits, hit)
		if len(hits) == opts.TopK {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "iterating search results")
	}
	return hits, nil
}

func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "beginning delete transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE id = ?`, id); err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "deleting passage "+id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM passage_data WHERE id = ?`, id); err != nil {
			return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "deleting passage data "+id)
		}
	}

	if err := tx.Commit(); err != nil {
		return cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "committing delete")
	}
	return nil
}

// DeleteByFilter matches metadata in Go since vec0 cannot filter on the
// companion table. Matching IDs are collected first, then removed.
func (s *Store) DeleteByFilter(ctx context.Context, filters map[string]any) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, metadata FROM passage_data`)
	if err != nil {
		return 0, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "listing passage metadata")
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id, metaStr string
		if err := rows.Scan(&id, &metaStr); err != nil {
			return 0, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "scanning passage metadata")
		}

		var metadata map[string]any
		if metaStr != "" && metaStr != "{}" {
			if err := json.Unmarshal([]byte(metaStr), &metadata); err != nil {
				return 0, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "unmarshalling passage metadata")
			}
		}
		if vectorstore.MatchesFilters(metadata, filters) {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "iterating passage metadata")
	}

	if err := s.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passage_data`).Scan(&count); err != nil {
		return 0, cderr.Wrap(err, cderr.CodeStoreDatabaseFailure, "counting passages")
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
