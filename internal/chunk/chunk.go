// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package chunk splits masked document text into retrieval-sized passages.
// Three interchangeable strategies are provided; recursive is the default
// and preserves document structure best.
package chunk

import (
	"strings"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Chunk is a single passage of document text.
//
// Index is 0-based and sequential over the chunks actually emitted by one
// Chunk call; blank candidates are dropped, not indexed. Metadata carries
// chunking_strategy and chunk_size at creation; callers may add keys
// (document linkage) but must not remove existing ones.
type Chunk struct {
	Text     string
	Index    int
	Metadata map[string]any
}

// TokenEstimate approximates the token count at four characters per
// token. A budget signal only, not a tokenizer.
func (c Chunk) TokenEstimate() int {
	return len(c.Text) / 4
}

// Config controls all chunking strategies. Zero fields take defaults.
type Config struct {
	// ChunkSize is the target maximum chunk length in characters.
	ChunkSize int
	// ChunkOverlap is the number of trailing characters carried into the
	// next chunk so boundary-adjacent content is searchable from both
	// sides.
	ChunkOverlap int
	// MinChunkSize is the length below which a closed chunk is merged
	// into a neighbour instead of kept standalone.
	MinChunkSize int
	// Separators are tried in order, coarsest first. An empty string
	// means character-level splitting and must come last.
	Separators []string
}

// DefaultSeparators returns the separator hierarchy, coarsest first.
func DefaultSeparators() []string {
	return []string{
		"\n\n\n", // section breaks
		"\n\n",   // paragraph breaks
		"\n",     // line breaks
		". ",
		"? ",
		"! ",
		"; ",
		", ",
		" ",
		"", // character-level, last resort
	}
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		MinChunkSize: 100,
		Separators:   DefaultSeparators(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = def.MinChunkSize
	}
	if len(c.Separators) == 0 {
		c.Separators = def.Separators
	}
	return c
}

// Chunker splits text into passages. Whitespace-only input yields nil.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Strategy names accepted by New.
const (
	StrategyRecursive = "recursive"
	StrategySentence  = "sentence"
	StrategyFixed     = "fixed"
)

// Strategies lists the recognized strategy names.
func Strategies() []string {
	return []string{StrategyRecursive, StrategySentence, StrategyFixed}
}

// New returns the chunker for the named strategy.
func New(strategy string, cfg Config) (Chunker, error) {
	cfg = cfg.withDefaults()

	switch strategy {
	case StrategyRecursive:
		return &Recursive{cfg: cfg}, nil
	case StrategySentence:
		return &Sentence{cfg: cfg}, nil
	case StrategyFixed:
		return &FixedSize{cfg: cfg}, nil
	default:
		return nil, cderr.New(cderr.CodeChunkStrategyUnknown,
			"unknown chunking strategy "+strategy+" (valid: "+strings.Join(Strategies(), ", ")+")",
			cderr.FieldStrategy(strategy),
		)
	}
}

// newChunk trims the piece and stamps the standard metadata. Returns
// false for blank pieces.
func newChunk(piece, strategy string, index int) (Chunk, bool) {
	trimmed := strings.TrimSpace(piece)
	if trimmed == "" {
		return Chunk{}, false
	}
	return Chunk{
		Text:  trimmed,
		Index: index,
		Metadata: map[string]any{
			"chunking_strategy": strategy,
			"chunk_size":        len(trimmed),
		},
	}, true
}
