// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package embed

import (
	"context"
	"crypto/sha256"
)

// DefaultHashDimensions matches the OpenAI text-embedding-3-small width
// so the hash provider can stand in for it in tests and offline runs.
const DefaultHashDimensions = 1536

// Hash is a deterministic embedder deriving vector values from a SHA-256
// digest of the text. Identical text always yields an identical vector,
// which is all the retrieval pipeline needs in tests and offline
// evaluation; there is no semantic similarity between different texts.
type Hash struct {
	dims int
}

// NewHash creates a hash embedder. Non-positive dims takes the default.
func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &Hash{dims: dims}
}

func (h *Hash) Dimensions() int {
	return h.dims
}

func (h *Hash) Embed(_ context.Context, text string) (Vector, error) {
	cleaned, err := requireText(text)
	if err != nil {
		return Vector{}, err
	}
	return Vector{SourceText: cleaned, Values: h.derive(cleaned)}, nil
}

func (h *Hash) EmbedBatch(_ context.Context, texts []string) ([]Vector, error) {
	cleaned, err := prepareBatch(texts)
	if err != nil {
		return nil, err
	}

	vectors := make([]Vector, len(cleaned))
	for i, t := range cleaned {
		vectors[i] = Vector{SourceText: t, Values: h.derive(t)}
	}
	return vectors, nil
}

// derive expands the digest into dims values in [-1, 1], rehashing per
// 32-value block so long vectors do not simply repeat.
func (h *Hash) derive(text string) []float32 {
	values := make([]float32, h.dims)
	digest := sha256.Sum256([]byte(text))
	for i := range values {
		if i > 0 && i%sha256.Size == 0 {
			digest = sha256.Sum256(digest[:])
		}
		values[i] = float32(digest[i%sha256.Size])/255.0*2 - 1
	}
	return values
}
