// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package embed

import (
	"context"

	"google.golang.org/genai"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Defaults for the Gemini embedding API.
const (
	DefaultGeminiModel      = "gemini-embedding-001"
	DefaultGeminiDimensions = 3072
)

// Gemini embeds through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGemini creates a Gemini embedder. Returns an error if the API key
// is missing or the client cannot be constructed.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, cderr.New(cderr.CodeEmbedInputInvalid,
			"gemini: missing api_key in config", cderr.FieldProvider(ProviderGemini))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeEmbedUpstreamFailure,
			"creating gemini client", cderr.FieldProvider(ProviderGemini))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultGeminiDimensions
	}

	return &Gemini{client: client, model: model, dims: dims}, nil
}

func (g *Gemini) Dimensions() int {
	return g.dims
}

func (g *Gemini) Embed(ctx context.Context, text string) (Vector, error) {
	cleaned, err := requireText(text)
	if err != nil {
		return Vector{}, err
	}

	vectors, err := g.request(ctx, []string{cleaned})
	if err != nil {
		return Vector{}, err
	}
	return vectors[0], nil
}

func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	cleaned, err := prepareBatch(texts)
	if err != nil {
		return nil, err
	}
	return g.request(ctx, cleaned)
}

func (g *Gemini) request(ctx context.Context, texts []string) ([]Vector, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(g.dims)),
	})
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeEmbedUpstreamFailure,
			"gemini embedding request failed", cderr.FieldProvider(ProviderGemini))
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, cderr.Errorf(cderr.CodeEmbedUpstreamFailure,
			"gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([]Vector, len(texts))
	for i, e := range resp.Embeddings {
		vectors[i] = Vector{SourceText: texts[i], Values: e.Values}
	}
	return vectors, nil
}
