// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package vectorstore

import (
	"sync"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// defaultDimensions matches OpenAI text-embedding-3-small.
const defaultDimensions = 1536

// Config selects and configures a storage backend.
type Config struct {
	// Backend names a registered backend; empty selects "memory".
	Backend string
	// Path is the database location for file-backed backends.
	Path string
	// Dimensions is the embedding width stored vectors must have.
	Dimensions int
}

// Factory creates a store for a backend. Backend packages call
// RegisterBackend from init().
type Factory func(cfg Config) (Store, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory under a backend name. It is
// goroutine-safe; later registrations replace earlier ones.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the store for the configured backend.
func New(cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "memory"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = defaultDimensions
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, cderr.New(cderr.CodeStoreBackendUnsupported,
			"unsupported storage backend "+backend,
			cderr.Field("backend", backend),
		)
	}
	return factory(cfg)
}
