// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package embed_test

import (
	"context"
	"testing"

	"github.com/cleardesk-hq/cleardesk/internal/embed"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := embed.New(context.Background(), embed.Config{Provider: "cohere"})
	require.Error(t, err)
	assert.True(t, cderr.IsInvalidConfiguration(err))
	assert.Equal(t, cderr.CodeEmbedProviderUnsupported, cderr.CodeOf(err))
}

func TestNew_DefaultsToHash(t *testing.T) {
	e, err := embed.New(context.Background(), embed.Config{})
	require.NoError(t, err)
	assert.Equal(t, embed.DefaultHashDimensions, e.Dimensions())
}

func TestNew_HostedProvidersRequireAPIKey(t *testing.T) {
	for _, provider := range []string{embed.ProviderOpenAI, embed.ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			_, err := embed.New(context.Background(), embed.Config{Provider: provider})
			require.Error(t, err)
			assert.True(t, cderr.IsInvalidInput(err))
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	e := embed.NewHash(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "annual leave policy")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "annual leave policy")
	require.NoError(t, err)
	c, err := e.Embed(ctx, "expense reimbursement")
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.NotEqual(t, a.Values, c.Values)
	assert.Equal(t, 64, a.Dimensions())
	for _, v := range a.Values {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestHash_CleansTextBeforeEmbedding(t *testing.T) {
	e := embed.NewHash(32)
	ctx := context.Background()

	a, err := e.Embed(ctx, "line one\nline two")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "  line one line two  ")
	require.NoError(t, err)

	assert.Equal(t, "line one line two", a.SourceText)
	assert.Equal(t, a.Values, b.Values)
}

func TestHash_RejectsEmptyText(t *testing.T) {
	e := embed.NewHash(0)

	_, err := e.Embed(context.Background(), "   \n  ")
	require.Error(t, err)
	assert.True(t, cderr.IsInvalidInput(err))
	assert.Equal(t, cderr.CodeEmbedInputInvalid, cderr.CodeOf(err))
}

func TestHash_BatchPreservesOrderAndDropsBlanks(t *testing.T) {
	e := embed.NewHash(16)
	ctx := context.Background()

	vectors, err := e.EmbedBatch(ctx, []string{"first", "", "second", "  ", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, "first", vectors[0].SourceText)
	assert.Equal(t, "second", vectors[1].SourceText)
	assert.Equal(t, "third", vectors[2].SourceText)

	// Batch output matches single-call output for the same text.
	single, err := e.Embed(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, single.Values, vectors[1].Values)
}

func TestHash_BatchAllBlank(t *testing.T) {
	e := embed.NewHash(16)

	_, err := e.EmbedBatch(context.Background(), []string{"", "  ", "\n"})
	require.Error(t, err)
	assert.Equal(t, cderr.CodeEmbedInputInvalid, cderr.CodeOf(err))
}
