// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package secrets_test

import (
	"testing"

	"github.com/cleardesk-hq/cleardesk/internal/secrets"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func init() {
	// Use the mock keyring for all tests so they don't touch the real OS keyring.
	keyring.MockInit()
}

func TestKeyringStore_StoreAndRetrieve(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-store-retrieve"

	require.NoError(t, ks.Store(svc, "api-key", "sk-secret-123"))

	val, err := ks.Retrieve(svc, "api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-123", val)
}

func TestKeyringStore_RetrieveNotFound(t *testing.T) {
	ks := secrets.NewKeyringStore()

	_, err := ks.Retrieve("no-such-service", "no-key")
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretNotFound), "expected CodeSecretNotFound, got: %v", err)
	assert.True(t, cderr.IsNotFound(err))
}

func TestKeyringStore_Delete(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-delete"

	require.NoError(t, ks.Store(svc, "temp-key", "temp-value"))
	require.NoError(t, ks.Delete(svc, "temp-key"))

	_, err := ks.Retrieve(svc, "temp-key")
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretNotFound))
}

func TestKeyringStore_DeleteNotFound(t *testing.T) {
	ks := secrets.NewKeyringStore()

	err := ks.Delete("no-such-service", "no-key")
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretNotFound))
}

func TestKeyringStore_ValidatesInput(t *testing.T) {
	ks := secrets.NewKeyringStore()

	assert.Error(t, ks.Store("", "key", "v"))
	assert.Error(t, ks.Store("svc", "", "v"))

	_, err := ks.Retrieve("", "key")
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretInvalidInput))

	err = ks.Delete("svc", "")
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretInvalidInput))
}

func TestKeyringStore_List(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-list"

	keys, err := ks.List(svc)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, ks.Store(svc, "openai", "sk-1"))
	require.NoError(t, ks.Store(svc, "gemini", "sk-2"))
	// Storing the same key twice must not duplicate the index entry.
	require.NoError(t, ks.Store(svc, "openai", "sk-1b"))

	keys, err = ks.List(svc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"openai", "gemini"}, keys)

	require.NoError(t, ks.Delete(svc, "openai"))
	keys, err = ks.List(svc)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini"}, keys)
}
