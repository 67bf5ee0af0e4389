// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package config loads and validates the ClearDesk configuration from
// file, environment (prefix CLEARDESK_), and defaults, in that
// precedence order.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/cleardesk-hq/cleardesk/internal/chunk"
	"github.com/cleardesk-hq/cleardesk/internal/embed"
	"github.com/cleardesk-hq/cleardesk/internal/secrets"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Config is the top-level ClearDesk configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Chunking   ChunkingConfig   `mapstructure:"chunking"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Vector     VectorConfig     `mapstructure:"vector"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	RBAC       RBACConfig       `mapstructure:"rbac"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// ChunkingConfig selects and tunes the chunking strategy.
type ChunkingConfig struct {
	Strategy     string `mapstructure:"strategy"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	MinChunkSize int    `mapstructure:"min_chunk_size"`
}

// EmbeddingConfig selects the embedding provider. APIKey may be a
// literal value or a keyring:// / env:// secret reference.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// VectorConfig selects the vector store backend.
type VectorConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	Dimensions int    `mapstructure:"dimensions"`
}

// RetrievalConfig tunes query behaviour.
type RetrievalConfig struct {
	TopK           int     `mapstructure:"top_k"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
	UseReranking   bool    `mapstructure:"use_reranking"`
	RerankBoost    float64 `mapstructure:"rerank_boost"`
}

// RBACConfig lists roles that make a passage readable by everyone.
type RBACConfig struct {
	PublicRoles []string `mapstructure:"public_roles"`
}

// EvaluationConfig tunes the evaluation harness.
type EvaluationConfig struct {
	K int `mapstructure:"k"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides. Secret references in string values
// are resolved through the OS keyring before unmarshalling.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8787")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("chunking.strategy", chunk.StrategyRecursive)
	v.SetDefault("chunking.chunk_size", 1000)
	v.SetDefault("chunking.chunk_overlap", 200)
	v.SetDefault("chunking.min_chunk_size", 100)
	v.SetDefault("embedding.provider", embed.ProviderHash)
	v.SetDefault("vector.backend", "memory")
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.score_threshold", 0.0)
	v.SetDefault("retrieval.use_reranking", true)
	v.SetDefault("retrieval.rerank_boost", 0.1)
	v.SetDefault("rbac.public_roles", []string{"all_staff"})
	v.SetDefault("evaluation.k", 5)

	// Environment
	v.SetEnvPrefix("CLEARDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, cderr.Errorf(cderr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	secrets.ResolveViperSecrets(v, secrets.NewKeyringStore())

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cderr.Errorf(cderr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, cderr.Errorf(cderr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a
// slice of all validation errors found, collecting all issues rather
// than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateChunking()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVector()...)
	errs = append(errs, c.validateRetrieval()...)

	if c.Evaluation.K <= 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: evaluation.k must be positive, got %d", c.Evaluation.K))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	host, port, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: server.listen %q is not host:port: %w", c.Server.Listen, err))
		return errs
	}
	if host == "" {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: server.listen %q must include a host", c.Server.Listen))
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: server.listen port %q must be 1-65535", port))
	}

	return errs
}

func (c *Config) validateChunking() []error {
	var errs []error

	valid := false
	for _, s := range chunk.Strategies() {
		if c.Chunking.Strategy == s {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: chunking.strategy must be one of %v, got %q",
			chunk.Strategies(), c.Chunking.Strategy))
	}

	if c.Chunking.ChunkSize <= 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize))
	}
	if c.Chunking.ChunkOverlap < 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: chunking.chunk_overlap must not be negative, got %d", c.Chunking.ChunkOverlap))
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize && c.Chunking.ChunkSize > 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: chunking.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize))
	}
	if c.Chunking.MinChunkSize < 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: chunking.min_chunk_size must not be negative, got %d", c.Chunking.MinChunkSize))
	}

	return errs
}

func (c *Config) validateEmbedding() []error {
	var errs []error

	switch c.Embedding.Provider {
	case embed.ProviderHash:
	case embed.ProviderOpenAI, embed.ProviderGemini:
		if c.Embedding.APIKey == "" {
			errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
				"config: embedding.api_key is required for provider %q", c.Embedding.Provider))
		}
	default:
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: embedding.provider must be one of [openai, gemini, hash], got %q",
			c.Embedding.Provider))
	}

	if c.Embedding.Dimensions < 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions))
	}

	return errs
}

func (c *Config) validateVector() []error {
	var errs []error

	switch c.Vector.Backend {
	case "memory":
	case "sqlite":
		if c.Vector.Path == "" {
			errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
				"config: vector.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: vector.backend must be one of [memory, sqlite], got %q", c.Vector.Backend))
	}

	return errs
}

func (c *Config) validateRetrieval() []error {
	var errs []error

	if c.Retrieval.TopK <= 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: retrieval.top_k must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: retrieval.score_threshold must be in [0, 1], got %g", c.Retrieval.ScoreThreshold))
	}
	if c.Retrieval.RerankBoost < 0 {
		errs = append(errs, cderr.Errorf(cderr.CodeConfigValidateInvalidValue,
			"config: retrieval.rerank_boost must not be negative, got %g", c.Retrieval.RerankBoost))
	}

	return errs
}
