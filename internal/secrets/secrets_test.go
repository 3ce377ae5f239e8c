// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/openclaw/recall/internal/config"
	"github.com/openclaw/recall/internal/secrets"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

func init() {
	// Use the mock keyring so tests never touch the real OS keyring.
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
	assert.True(t, recallerr.HasCode(err, recallerr.CodeSecretNotFound), "expected CodeSecretNotFound, got: %v", err)
}

func TestKeyringStore_Delete(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-delete"

	require.NoError(t, ks.Store(svc, "temp-key", "temp-value"))
	require.NoError(t, ks.Delete(svc, "temp-key"))

	_, err := ks.Retrieve(svc, "temp-key")
	require.Error(t, err)
	assert.True(t, recallerr.HasCode(err, recallerr.CodeSecretNotFound))
}

func TestKeyringStore_List(t *testing.T) {
	ks := secrets.NewKeyringStore()
	svc := "test-list"

	keys, err := ks.List(svc)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, ks.Store(svc, "key-a", "val-a"))
	require.NoError(t, ks.Store(svc, "key-b", "val-b"))

	keys, err = ks.List(svc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"key-a", "key-b"}, keys)
}

func TestParseKeyringURI(t *testing.T) {
	cases := []struct {
		uri         string
		wantService string
		wantKey     string
		wantErr     bool
	}{
		{"keyring://recall/openai_api_key", "recall", "openai_api_key", false},
		{"keyring://recall/nested/key", "recall", "nested/key", false},
		{"keyring://recall", "", "", true},
		{"keyring:///key", "", "", true},
		{"keyring://service/", "", "", true},
		{"plain-value", "", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.uri, func(t *testing.T) {
			service, key, err := secrets.ParseKeyringURI(tc.uri)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantService, service)
			assert.Equal(t, tc.wantKey, key)
		})
	}
}

func TestResolveKeyringURI_PassThrough(t *testing.T) {
	ks := secrets.NewKeyringStore()

	val, err := secrets.ResolveKeyringURI(ks, "sk-plain-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-plain-key", val)
}

func TestResolveConfig(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store("recall-test", "feishu_app_secret", "fs-secret"))
	require.NoError(t, ks.Store("recall-test", "openai_api_key", "sk-openai"))

	cfg := &config.Config{
		Graph: config.GraphConfig{AppSecret: "keyring://recall-test/feishu_app_secret"},
		Providers: map[string]config.ProviderConfig{
			"openai": {APIKey: "keyring://recall-test/openai_api_key"},
			"google": {APIKey: "plain-google-key"},
		},
	}

	require.NoError(t, secrets.ResolveConfig(cfg, ks))
	assert.Equal(t, "fs-secret", cfg.Graph.AppSecret)
	assert.Equal(t, "sk-openai", cfg.Providers["openai"].APIKey)
	assert.Equal(t, "plain-google-key", cfg.Providers["google"].APIKey)
}

func TestResolveConfig_MissingSecret(t *testing.T) {
	ks := secrets.NewKeyringStore()

	cfg := &config.Config{
		Graph: config.GraphConfig{AppSecret: "keyring://recall-test/absent"},
	}

	err := secrets.ResolveConfig(cfg, ks)
	require.Error(t, err)
	assert.True(t, recallerr.HasCode(err, recallerr.CodeSecretResolveFailure))
}
