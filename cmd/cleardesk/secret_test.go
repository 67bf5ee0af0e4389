// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleardesk-hq/cleardesk/internal/secrets"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// fakeSecretStore is an in-memory secrets.Store for command tests.
type fakeSecretStore struct {
	values map[string]string
}

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{values: map[string]string{}}
}

func (f *fakeSecretStore) Store(service, key, value string) error {
	f.values[service+"/"+key] = value
	return nil
}

func (f *fakeSecretStore) Retrieve(service, key string) (string, error) {
	v, ok := f.values[service+"/"+key]
	if !ok {
		return "", cderr.New(cderr.CodeSecretNotFound, "secret not found")
	}
	return v, nil
}

func (f *fakeSecretStore) Delete(service, key string) error {
	if _, ok := f.values[service+"/"+key]; !ok {
		return cderr.New(cderr.CodeSecretNotFound, "secret not found")
	}
	delete(f.values, service+"/"+key)
	return nil
}

func (f *fakeSecretStore) List(service string) ([]string, error) {
	var keys []string
	prefix := service + "/"
	for k := range f.values {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k[len(prefix):])
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func withFakeSecretStore(t *testing.T) *fakeSecretStore {
	t.Helper()
	fake := newFakeSecretStore()
	old := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return fake }
	t.Cleanup(func() { secretStoreFactory = old })
	return fake
}

func TestSecretSetAndList(t *testing.T) {
	fake := withFakeSecretStore(t)

	out, err := execute(t, "secret", "set", "openai-key", "sk-test")
	require.NoError(t, err)
	assert.Contains(t, out, "keyring://cleardesk/openai-key")
	assert.Equal(t, "sk-test", fake.values["cleardesk/openai-key"])

	out, err = execute(t, "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "openai-key")
}

func TestSecretList_Empty(t *testing.T) {
	withFakeSecretStore(t)

	out, err := execute(t, "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No secrets stored.")
}

func TestSecretDelete(t *testing.T) {
	fake := withFakeSecretStore(t)
	require.NoError(t, fake.Store(serviceName, "gemini-key", "g-test"))

	out, err := execute(t, "secret", "delete", "gemini-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted secret: gemini-key")
	assert.Empty(t, fake.values)
}

func TestSecretDelete_NotFound(t *testing.T) {
	withFakeSecretStore(t)

	_, err := execute(t, "secret", "delete", "absent")
	require.Error(t, err)
	assert.True(t, cderr.HasCode(err, cderr.CodeSecretNotFound))
}
