// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package chunk

import "strings"

// FixedSize slides a ChunkSize window over the text, advancing by
// ChunkSize-ChunkOverlap per step. Use it when document structure is
// unknown or irrelevant.
type FixedSize struct {
	cfg Config
}

func (f *FixedSize) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	step := f.cfg.ChunkSize - f.cfg.ChunkOverlap
	if step <= 0 {
		// Overlap at or above the window size would never advance.
		step = f.cfg.ChunkSize
	}

	var chunks []Chunk
	for start := 0; start < len(text); start += step {
		end := start + f.cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		if c, ok := newChunk(text[start:end], StrategyFixed, len(chunks)); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
