// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CarriesCodeAndFields(t *testing.T) {
	err := cderr.New(cderr.CodeRetrieveQueryInvalid, "query must not be empty",
		cderr.Field("query_len", 0),
		cderr.FieldUserID("u-1"),
	)
	require.Error(t, err)

	assert.Equal(t, cderr.CodeRetrieveQueryInvalid, cderr.CodeOf(err))
	fields := cderr.FieldsOf(err)
	assert.Equal(t, 0, fields["query_len"])
	assert.Equal(t, "u-1", fields["user_id"])
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, cderr.Wrap(nil, cderr.CodeStoreDatabaseFailure, "ignored"))
	assert.NoError(t, cderr.Wrapf(nil, cderr.CodeStoreDatabaseFailure, "ignored"))
	assert.NoError(t, cderr.With(nil, cderr.Field("k", "v")))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := cderr.Wrap(cause, cderr.CodeStoreDatabaseFailure, "upserting passages")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cderr.CodeStoreDatabaseFailure, cderr.CodeOf(err))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		invalid    bool
		invalidCfg bool
		port       bool
	}{
		{
			name:    "empty query is invalid input",
			err:     cderr.New(cderr.CodeRetrieveQueryInvalid, "empty"),
			invalid: true,
		},
		{
			name:       "unknown strategy is invalid configuration",
			err:        cderr.New(cderr.CodeChunkStrategyUnknown, "no such strategy"),
			invalidCfg: true,
		},
		{
			name: "embedding upstream failure is a port failure",
			err:  cderr.New(cderr.CodeEmbedUpstreamFailure, "429"),
			port: true,
		},
		{
			name: "vector index failure is a port failure",
			err:  cderr.New(cderr.CodeStoreDatabaseFailure, "locked"),
			port: true,
		},
		{
			name: "config read failure is not a port failure",
			err:  cderr.New(cderr.CodeConfigLoadReadFailure, "missing file"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.invalid, cderr.IsInvalidInput(tt.err))
			assert.Equal(t, tt.invalidCfg, cderr.IsInvalidConfiguration(tt.err))
			assert.Equal(t, tt.port, cderr.IsPortFailure(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", cderr.New(cderr.CodeRetrieveQueryInvalid, "x"), http.StatusBadRequest},
		{"unknown backend", cderr.New(cderr.CodeStoreBackendUnsupported, "x"), http.StatusBadRequest},
		{"not found", cderr.New(cderr.CodeServerEntityNotFound, "x"), http.StatusNotFound},
		{"port failure", cderr.New(cderr.CodeEmbedUpstreamFailure, "x"), http.StatusBadGateway},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cderr.HTTPStatus(tt.err))
		})
	}
}

func TestCodeOf_NonOopsError(t *testing.T) {
	assert.Equal(t, cderr.Code(""), cderr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, cderr.Code(""), cderr.CodeOf(nil))
}
