// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package embed maps text to fixed-length vectors through pluggable
// provider adapters. The retriever depends only on the Embedder
// interface; adapters are selected by configuration at construction.
package embed

import (
	"context"
	"strings"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Vector is an embedding of SourceText. Two vectors are only comparable
// when produced by the same model at the same dimensionality.
type Vector struct {
	SourceText string
	Values     []float32
}

// Dimensions returns the vector length.
func (v Vector) Dimensions() int {
	return len(v.Values)
}

// Embedder is the embedding port.
type Embedder interface {
	// Embed converts one text to a vector. Blank text is rejected.
	Embed(ctx context.Context, text string) (Vector, error)
	// EmbedBatch converts many texts in one call. Output order follows
	// input order with blank entries dropped; all-blank input is
	// rejected.
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
	// Dimensions reports the vector length this embedder produces.
	Dimensions() int
}

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderHash   = "hash"
)

// Config selects and configures an embedding provider.
type Config struct {
	Provider string
	// Model overrides the provider's default embedding model.
	Model string
	// APIKey authenticates hosted providers; unused by hash.
	APIKey string
	// Dimensions overrides the output dimensionality where the provider
	// supports it (hash, gemini).
	Dimensions int
}

// New returns the embedder for the configured provider.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderHash, "":
		return NewHash(cfg.Dimensions), nil
	default:
		return nil, cderr.New(cderr.CodeEmbedProviderUnsupported,
			"unknown embedding provider "+cfg.Provider+" (valid: openai, gemini, hash)",
			cderr.FieldProvider(cfg.Provider),
		)
	}
}

// cleanText collapses newlines to spaces and trims surrounding
// whitespace; embedding models treat newlines inconsistently.
func cleanText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// prepareBatch cleans the inputs and drops blank entries, preserving
// order. An all-blank batch is an input error.
func prepareBatch(texts []string) ([]string, error) {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if c := cleanText(t); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return nil, cderr.New(cderr.CodeEmbedInputInvalid, "all texts in batch are empty")
	}
	return cleaned, nil
}

// requireText validates a single embed input.
func requireText(text string) (string, error) {
	c := cleanText(text)
	if c == "" {
		return "", cderr.New(cderr.CodeEmbedInputInvalid, "cannot embed empty text")
	}
	return c, nil
}
