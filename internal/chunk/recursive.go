// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package chunk

import (
	"strings"
	"unicode/utf8"
)

// Recursive splits on the coarsest separator that keeps pieces within
// ChunkSize, recursing to finer separators for oversized pieces, then
// merges small neighbours and seeds each new chunk with the tail of the
// previous one.
type Recursive struct {
	cfg Config
}

func (r *Recursive) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := r.split(text, r.cfg.Separators)
	merged := r.merge(pieces)

	var chunks []Chunk
	for _, piece := range merged {
		if c, ok := newChunk(piece, StrategyRecursive, len(chunks)); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// split divides text using the separator hierarchy. Adjacent splits are
// greedily re-packed into pieces no longer than ChunkSize; a packed run
// that still exceeds ChunkSize (the separator never occurred inside it)
// recurses with the next-finer separator. Separators are retained on the
// piece that precedes them, so concatenating the pieces reproduces the
// input exactly.
func (r *Recursive) split(text string, separators []string) []string {
	if len(separators) == 0 {
		return []string{text}
	}
	if len(text) <= r.cfg.ChunkSize {
		return []string{text}
	}

	sep := separators[0]
	finer := separators[1:]

	var splits []string
	if sep == "" {
		splits = strings.Split(text, "") // rune-level
	} else {
		splits = strings.Split(text, sep)
	}

	var pieces []string
	flush := func(current string) {
		if current == "" {
			return
		}
		if len(current) > r.cfg.ChunkSize {
			pieces = append(pieces, r.split(current, finer)...)
		} else {
			pieces = append(pieces, current)
		}
	}

	current := ""
	for i, split := range splits {
		piece := split
		if sep != "" && i < len(splits)-1 {
			piece += sep
		}

		if len(current)+len(piece) > r.cfg.ChunkSize {
			flush(current)
			current = piece
			continue
		}
		current += piece
	}
	flush(current)

	return pieces
}

// merge concatenates consecutive pieces while the result stays within
// ChunkSize. When a chunk is closed, the next one is seeded with its
// trailing ChunkOverlap characters; a closed chunk below MinChunkSize is
// folded into a neighbour instead of kept.
func (r *Recursive) merge(pieces []string) []string {
	if len(pieces) == 0 {
		return nil
	}

	var merged []string
	current := pieces[0]

	for _, next := range pieces[1:] {
		if len(current)+len(next) <= r.cfg.ChunkSize {
			current += next
			continue
		}

		if len(current) >= r.cfg.MinChunkSize {
			merged = append(merged, current)
		}
		current = r.tail(current) + next
	}

	switch {
	case len(current) >= r.cfg.MinChunkSize:
		merged = append(merged, current)
	case len(merged) > 0:
		// Too small to stand alone; fold into the previous chunk.
		merged[len(merged)-1] += current
	case current != "":
		merged = append(merged, current)
	}

	return merged
}

// tail returns the trailing ChunkOverlap bytes of s, backed up to a rune
// boundary, or all of s when it is shorter than the overlap.
func (r *Recursive) tail(s string) string {
	if len(s) <= r.cfg.ChunkOverlap {
		return s
	}
	cut := len(s) - r.cfg.ChunkOverlap
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[cut:]
}
