// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package chunk_test

import (
	"strings"
	"testing"

	"github.com/cleardesk-hq/cleardesk/internal/chunk"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := chunk.New("semantic", chunk.Config{})
	require.Error(t, err)
	assert.True(t, cderr.IsInvalidConfiguration(err))
	assert.Contains(t, err.Error(), "recursive")
	assert.Contains(t, err.Error(), "sentence")
	assert.Contains(t, err.Error(), "fixed")
}

func TestChunkers_BlankInput(t *testing.T) {
	for _, strategy := range chunk.Strategies() {
		t.Run(strategy, func(t *testing.T) {
			c, err := chunk.New(strategy, chunk.Config{})
			require.NoError(t, err)

			assert.Nil(t, c.Chunk(""))
			assert.Nil(t, c.Chunk("   \n\t  "))
		})
	}
}

func TestRecursive_SmallTextSingleChunk(t *testing.T) {
	c, err := chunk.New(chunk.StrategyRecursive, chunk.Config{})
	require.NoError(t, err)

	chunks := c.Chunk("Annual leave is twenty five days.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Annual leave is twenty five days.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "recursive", chunks[0].Metadata["chunking_strategy"])
	assert.Equal(t, len(chunks[0].Text), chunks[0].Metadata["chunk_size"])
}

func TestRecursive_ParagraphText(t *testing.T) {
	cfg := chunk.Config{ChunkSize: 300, ChunkOverlap: 60, MinChunkSize: 80}
	c, err := chunk.New(chunk.StrategyRecursive, cfg)
	require.NoError(t, err)

	para := strings.Repeat("the policy applies to all permanent staff ", 3) // ~126 chars
	text := strings.TrimSpace(strings.Repeat(para+"\n\n", 6))

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.NotEmpty(t, strings.TrimSpace(ch.Text))
		// Bounded tolerance: overlap seeding plus a folded-in small tail.
		assert.LessOrEqual(t, len(ch.Text), cfg.ChunkSize+cfg.ChunkOverlap+cfg.MinChunkSize)
		// No invented characters: every chunk is a contiguous slice of the input.
		assert.Contains(t, text, ch.Text)
		assert.Equal(t, "recursive", ch.Metadata["chunking_strategy"])
	}

	// Coverage at both ends of the document.
	assert.True(t, strings.HasPrefix(text, chunks[0].Text[:40]))
	last := chunks[len(chunks)-1].Text
	assert.True(t, strings.HasSuffix(text, last[len(last)-40:]))
}

func TestRecursive_LongUnbrokenRun(t *testing.T) {
	cfg := chunk.Config{ChunkSize: 1000, ChunkOverlap: 200, MinChunkSize: 100}
	c, err := chunk.New(chunk.StrategyRecursive, cfg)
	require.NoError(t, err)

	chunks := c.Chunk(strings.Repeat("x", 2500))
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), cfg.ChunkSize+cfg.ChunkOverlap)
		assert.NotEmpty(t, ch.Text)
	}
}

func TestSentence_GroupsSentences(t *testing.T) {
	c, err := chunk.New(chunk.StrategySentence, chunk.Config{ChunkSize: 50, MinChunkSize: 1})
	require.NoError(t, err)

	text := "First sentence here. Second sentence here. Third one. Fourth statement goes here."
	chunks := c.Chunk(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, "First sentence here. Second sentence here.", chunks[0].Text)
	assert.Equal(t, "Third one. Fourth statement goes here.", chunks[1].Text)
	assert.Equal(t, "sentence", chunks[0].Metadata["chunking_strategy"])
	assert.Equal(t, []int{0, 1}, []int{chunks[0].Index, chunks[1].Index})
}

func TestFixed_WindowAndStride(t *testing.T) {
	cfg := chunk.Config{ChunkSize: 100, ChunkOverlap: 20, MinChunkSize: 1}
	c, err := chunk.New(chunk.StrategyFixed, cfg)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 30) // 300 chars, no whitespace
	chunks := c.Chunk(text)

	require.Len(t, chunks, 4) // starts at 0, 80, 160, 240
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, len(ch.Text), cfg.ChunkSize)
		assert.Contains(t, text, ch.Text)
		assert.Equal(t, "fixed", ch.Metadata["chunking_strategy"])
	}
	assert.Equal(t, text[:100], chunks[0].Text)
	assert.Equal(t, text[240:], chunks[3].Text)
}

func TestFixed_OverlapAtWindowSizeStillAdvances(t *testing.T) {
	c, err := chunk.New(chunk.StrategyFixed, chunk.Config{ChunkSize: 50, ChunkOverlap: 50, MinChunkSize: 1})
	require.NoError(t, err)

	chunks := c.Chunk(strings.Repeat("y", 120))
	require.Len(t, chunks, 3)
}

func TestChunk_TokenEstimate(t *testing.T) {
	assert.Equal(t, 2, chunk.Chunk{Text: "abcdefgh"}.TokenEstimate())
	assert.Equal(t, 0, chunk.Chunk{Text: "abc"}.TokenEstimate())
}
