// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package chunk

import (
	"regexp"
	"strings"
)

// sentenceEnd marks a sentence boundary: terminal punctuation followed by
// whitespace. The punctuation stays with the sentence; the whitespace is
// consumed.
var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Sentence splits on sentence boundaries and greedily groups consecutive
// sentences into chunks bounded by ChunkSize. A simpler alternative to
// Recursive for prose with clear sentence structure.
type Sentence struct {
	cfg Config
}

func (s *Sentence) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var groups []string
	current := ""
	for _, sentence := range splitSentences(text) {
		if len(current)+len(sentence) <= s.cfg.ChunkSize {
			current += sentence + " "
			continue
		}
		if strings.TrimSpace(current) != "" {
			groups = append(groups, current)
		}
		current = sentence + " "
	}
	if strings.TrimSpace(current) != "" {
		groups = append(groups, current)
	}

	var chunks []Chunk
	for _, group := range groups {
		if c, ok := newChunk(group, StrategySentence, len(chunks)); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// splitSentences cuts text after each terminal punctuation mark, dropping
// the inter-sentence whitespace.
func splitSentences(text string) []string {
	locs := sentenceEnd.FindAllStringIndex(text, -1)

	var sentences []string
	start := 0
	for _, loc := range locs {
		// loc[0] is the punctuation byte; keep it on the sentence.
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
