// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/recall/internal/secrets"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

// mockSecretStore is an in-memory secrets.Store for testing.
type mockSecretStore struct {
	data map[string]string // key -> value (service is always "recall")
}

func newMockSecretStore(keys ...string) *mockSecretStore {
	m := &mockSecretStore{data: make(map[string]string)}
	for _, k := range keys {
		m.data[k] = "redacted"
	}
	return m
}

func (m *mockSecretStore) Store(_, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mockSecretStore) Retrieve(_, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", recallerr.Errorf(recallerr.CodeSecretNotFound, "not found")
	}
	return v, nil
}

func (m *mockSecretStore) Delete(_, key string) error {
	if _, ok := m.data[key]; !ok {
		return recallerr.Errorf(recallerr.CodeSecretNotFound, "not found")
	}
	delete(m.data, key)
	return nil
}

func (m *mockSecretStore) List(_ string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// withMockSecrets swaps the secret store factory for the duration of a test.
func withMockSecrets(t *testing.T, m secrets.Store) {
	t.Helper()
	orig := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return m }
	t.Cleanup(func() { secretStoreFactory = orig })
}

func TestSecretSet(t *testing.T) {
	mock := newMockSecretStore()
	withMockSecrets(t, mock)

	var out bytes.Buffer
	cmd := newSecretSetCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"openai_api_key", "sk-test"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "sk-test", mock.data["openai_api_key"])
	assert.Contains(t, out.String(), "keyring://recall/openai_api_key")
}

func TestSecretList(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		wantKeys []string
		wantMsg  string
	}{
		{name: "empty store", wantMsg: "No secrets stored.\n"},
		{name: "single key", keys: []string{"openai_api_key"}, wantKeys: []string{"openai_api_key"}},
		{name: "multiple keys", keys: []string{"key-1", "key-2"}, wantKeys: []string{"key-1", "key-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockSecrets(t, newMockSecretStore(tt.keys...))

			var out bytes.Buffer
			cmd := newSecretListCmd()
			cmd.SetOut(&out)

			require.NoError(t, cmd.Execute())

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, out.String())
				return
			}

			got := strings.Fields(strings.TrimSpace(out.String()))
			sort.Strings(got)
			assert.Equal(t, tt.wantKeys, got)
		})
	}
}

func TestSecretDelete(t *testing.T) {
	mock := newMockSecretStore("feishu_app_secret")
	withMockSecrets(t, mock)

	var out bytes.Buffer
	cmd := newSecretDeleteCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"feishu_app_secret"})

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, mock.data, "feishu_app_secret")
	assert.Contains(t, out.String(), "Deleted secret: feishu_app_secret")
}

func TestSecretDelete_NotFound(t *testing.T) {
	withMockSecrets(t, newMockSecretStore())

	cmd := newSecretDeleteCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"absent"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, recallerr.HasCode(err, recallerr.CodeSecretNotFound))
}
