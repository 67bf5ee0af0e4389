// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cleardesk-hq/cleardesk/internal/config"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cleardesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Listen)
	assert.Equal(t, "recursive", cfg.Chunking.Strategy)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 100, cfg.Chunking.MinChunkSize)
	assert.Equal(t, "hash", cfg.Embedding.Provider)
	assert.Equal(t, "memory", cfg.Vector.Backend)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.True(t, cfg.Retrieval.UseReranking)
	assert.Equal(t, 0.1, cfg.Retrieval.RerankBoost)
	assert.Equal(t, []string{"all_staff"}, cfg.RBAC.PublicRoles)
	assert.Equal(t, 5, cfg.Evaluation.K)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: 0.0.0.0:9090
chunking:
  strategy: sentence
  chunk_size: 400
  chunk_overlap: 50
  min_chunk_size: 40
embedding:
  provider: openai
  model: text-embedding-3-large
  api_key: sk-test
vector:
  backend: sqlite
  path: /tmp/cleardesk.db
retrieval:
  top_k: 8
  use_reranking: false
rbac:
  public_roles: [everyone]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Listen)
	assert.Equal(t, "sentence", cfg.Chunking.Strategy)
	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, "sqlite", cfg.Vector.Backend)
	assert.Equal(t, "/tmp/cleardesk.db", cfg.Vector.Path)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.False(t, cfg.Retrieval.UseReranking)
	assert.Equal(t, []string{"everyone"}, cfg.RBAC.PublicRoles)
}

func TestLoad_EnvSecretReference(t *testing.T) {
	t.Setenv("CLEARDESK_OPENAI_KEY", "sk-from-env")
	path := writeConfig(t, `
embedding:
  provider: openai
  api_key: env://CLEARDESK_OPENAI_KEY
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeConfigLoadReadFailure))
}

func TestLoad_CollectsAllValidationErrors(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: not-an-address
chunking:
  strategy: semantic
embedding:
  provider: openai
vector:
  backend: postgres
retrieval:
  top_k: 0
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeConfigValidateInvalidValue))

	// All problems are reported, not just the first.
	msg := err.Error()
	assert.Contains(t, msg, "server.listen")
	assert.Contains(t, msg, "chunking.strategy")
	assert.Contains(t, msg, "embedding.api_key")
	assert.Contains(t, msg, "vector.backend")
	assert.Contains(t, msg, "retrieval.top_k")
}

func TestValidate_OverlapMustStayBelowChunkSize(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Chunking.ChunkOverlap = cfg.Chunking.ChunkSize
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "chunk_overlap")
}

func TestValidate_SQLiteRequiresPath(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Vector.Backend = "sqlite"
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "vector.path")
}
