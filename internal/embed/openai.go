// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package embed

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// openaiModelDimensions maps known embedding models to their native
// output width. Unknown models fall back to the small-model width.
var openaiModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAI embeds through the OpenAI embeddings API.
type OpenAI struct {
	client openaisdk.Client
	model  string
	dims   int
}

// NewOpenAI creates an OpenAI embedder. Returns an error if the API key
// is missing.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, cderr.New(cderr.CodeEmbedInputInvalid,
			"openai: missing api_key in config", cderr.FieldProvider(ProviderOpenAI))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	dims, ok := openaiModelDimensions[model]
	if !ok {
		dims = openaiModelDimensions[DefaultOpenAIModel]
	}

	return &OpenAI{
		client: openaisdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
		dims:   dims,
	}, nil
}

func (o *OpenAI) Dimensions() int {
	return o.dims
}

func (o *OpenAI) Embed(ctx context.Context, text string) (Vector, error) {
	cleaned, err := requireText(text)
	if err != nil {
		return Vector{}, err
	}

	vectors, err := o.request(ctx, []string{cleaned})
	if err != nil {
		return Vector{}, err
	}
	return vectors[0], nil
}

func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	cleaned, err := prepareBatch(texts)
	if err != nil {
		return nil, err
	}
	return o.request(ctx, cleaned)
}

func (o *OpenAI) request(ctx context.Context, texts []string) ([]Vector, error) {
	resp, err := o.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(o.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeEmbedUpstreamFailure,
			"openai embedding request failed", cderr.FieldProvider(ProviderOpenAI))
	}
	if len(resp.Data) != len(texts) {
		return nil, cderr.Errorf(cderr.CodeEmbedUpstreamFailure,
			"openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([]Vector, len(texts))
	for i, d := range resp.Data {
		values := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			values[j] = float32(v)
		}
		vectors[i] = Vector{SourceText: texts[i], Values: values}
	}
	return vectors, nil
}
