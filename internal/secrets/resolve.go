// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package secrets

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

const (
	keyringScheme = "keyring://"
	envScheme     = "env://"
)

// IsSecretURI reports whether value uses one of the secret reference
// schemes (keyring:// or env://).
func IsSecretURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme) || strings.HasPrefix(value, envScheme)
}

// ParseKeyringURI extracts service and key from a keyring://service/key
// URI. Returns an error if the URI is malformed.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !strings.HasPrefix(uri, keyringScheme) {
		return "", "", cderr.Errorf(cderr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}

	path := strings.TrimPrefix(uri, keyringScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", cderr.Errorf(cderr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}
	return parts[0], parts[1], nil
}

// Resolve resolves a secret reference to its value. keyring:// URIs are
// looked up in the store, env:// URIs in the environment. Any other
// value passes through unchanged.
func Resolve(store Store, value string) (string, error) {
	switch {
	case strings.HasPrefix(value, keyringScheme):
		service, key, err := ParseKeyringURI(value)
		if err != nil {
			return "", err
		}
		secret, err := store.Retrieve(service, key)
		if err != nil {
			return "", cderr.Wrapf(err, cderr.CodeSecretResolveFailure, "resolving keyring URI %q", value)
		}
		return secret, nil

	case strings.HasPrefix(value, envScheme):
		name := strings.TrimPrefix(value, envScheme)
		if name == "" {
			return "", cderr.Errorf(cderr.CodeSecretInvalidInput,
				"invalid env URI %q: expected env://NAME", value)
		}
		secret, ok := os.LookupEnv(name)
		if !ok {
			return "", cderr.Errorf(cderr.CodeSecretNotFound,
				"environment variable %s not set", name)
		}
		return secret, nil

	default:
		return value, nil
	}
}

// ResolveViperSecrets walks all keys in a Viper instance and resolves
// any string values that use a secret reference scheme. This is a
// post-load resolution step, not a Viper decoder hook.
//
// Resolution failures are logged as warnings and the original URI value
// is kept in place, allowing the application to surface the error later
// when the config value is actually used.
func ResolveViperSecrets(v *viper.Viper, store Store) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if !IsSecretURI(val) {
			continue
		}

		resolved, err := Resolve(store, val)
		if err != nil {
			slog.Warn("failed to resolve secret URI, keeping original value",
				"config_key", key,
				"error", err,
			)
			continue
		}

		v.Set(key, resolved)
	}
}
