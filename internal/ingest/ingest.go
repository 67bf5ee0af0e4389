// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package ingest turns uploaded document bytes into chunks ready for
// indexing: parse, mask PII, chunk, and stamp metadata. Masking runs
// before chunking so no raw identifier ever reaches the index.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/cleardesk-hq/cleardesk/internal/chunk"
	"github.com/cleardesk-hq/cleardesk/internal/pii"
)

// DocumentMetadata describes one ingested document.
type DocumentMetadata struct {
	DocumentID       string         `json:"document_id"`
	Filename         string         `json:"filename"`
	FileType         string         `json:"file_type"`
	FileSizeBytes    int            `json:"file_size_bytes"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	UploadedBy       string         `json:"uploaded_by,omitempty"`
	Department       string         `json:"department,omitempty"`
	AccessRoles      []string       `json:"access_roles"`
	ChunkCount       int            `json:"chunk_count"`
	PIIDetected      map[string]int `json:"pii_detected"`
	ProcessingTimeMS float64        `json:"processing_time_ms"`
}

// ProcessedDocument is the result of ingestion: chunks ready for
// embedding plus metadata for storage and tracking.
type ProcessedDocument struct {
	Metadata DocumentMetadata
	Chunks   []chunk.Chunk
}

// TotalCharacters sums the chunk text lengths.
func (p *ProcessedDocument) TotalCharacters() int {
	total := 0
	for _, c := range p.Chunks {
		total += len(c.Text)
	}
	return total
}

// Options carries caller-supplied document attributes.
type Options struct {
	UploadedBy  string
	Department  string
	AccessRoles []string
}

// Pipeline runs the ingestion steps with a fixed masker and chunker.
type Pipeline struct {
	masker  *pii.Masker
	chunker chunk.Chunker
	logger  *slog.Logger
	now     func() time.Time
}

// NewPipeline creates a pipeline. A nil logger falls back to
// slog.Default.
func NewPipeline(masker *pii.Masker, chunker chunk.Chunker, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{masker: masker, chunker: chunker, logger: logger, now: time.Now}
}

// Ingest parses, masks, and chunks one document. Every chunk is stamped
// with document_id, filename, department when set, and the access role
// list (an empty list marks the document public).
func (p *Pipeline) Ingest(content []byte, filename string, opts Options) (*ProcessedDocument, error) {
	start := p.now()

	parser, err := ParserFor(filename)
	if err != nil {
		return nil, err
	}
	text, err := parser.Parse(content, filename)
	if err != nil {
		return nil, err
	}

	documentID := DocumentID(content, filename)
	masked, stats := p.masker.MaskWithStats(text)
	chunks := p.chunker.Chunk(masked)

	accessRoles := opts.AccessRoles
	if accessRoles == nil {
		accessRoles = []string{}
	}
	for i := range chunks {
		chunks[i].Metadata["document_id"] = documentID
		chunks[i].Metadata["filename"] = filename
		chunks[i].Metadata["access_roles"] = accessRoles
		if opts.Department != "" {
			chunks[i].Metadata["department"] = opts.Department
		}
	}

	metadata := DocumentMetadata{
		DocumentID:       documentID,
		Filename:         filename,
		FileType:         fileType(filename),
		FileSizeBytes:    len(content),
		UploadedAt:       start.UTC(),
		UploadedBy:       opts.UploadedBy,
		Department:       opts.Department,
		AccessRoles:      accessRoles,
		ChunkCount:       len(chunks),
		PIIDetected:      stats,
		ProcessingTimeMS: float64(p.now().Sub(start).Microseconds()) / 1000.0,
	}

	p.logger.Info("ingested document",
		"document_id", documentID,
		"filename", filename,
		"chunks", len(chunks),
		"pii_types", len(stats),
	)
	return &ProcessedDocument{Metadata: metadata, Chunks: chunks}, nil
}

// DocumentID derives a stable ID from a content hash, so the same file
// uploaded twice deduplicates to the same document.
func DocumentID(content []byte, filename string) string {
	hasher := sha256.New()
	hasher.Write(content)
	hasher.Write([]byte(filename))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func fileType(filename string) string {
	parts := strings.Split(filename, ".")
	return strings.ToLower(parts[len(parts)-1])
}
