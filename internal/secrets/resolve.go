// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package secrets stores credentials in the OS keyring and resolves
// keyring:// references found in configuration values.
package secrets

import (
	"strings"

	"github.com/openclaw/recall/internal/config"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

const keyringScheme = "keyring://"

// IsKeyringURI reports whether value uses the keyring:// URI scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseKeyringURI extracts service and key from a keyring://service/key URI.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !IsKeyringURI(uri) {
		return "", "", recallerr.Errorf(recallerr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}

	path := strings.TrimPrefix(uri, keyringScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", recallerr.Errorf(recallerr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}

	return parts[0], parts[1], nil
}

// ResolveKeyringURI resolves a single keyring:// URI to its secret value.
// Returns the original value unchanged if it is not a keyring URI.
func ResolveKeyringURI(store Store, value string) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}

	service, key, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}

	secret, err := store.Retrieve(service, key)
	if err != nil {
		return "", recallerr.Wrapf(err, recallerr.CodeSecretResolveFailure,
			"resolving keyring URI %q", value)
	}

	return secret, nil
}

// ResolveConfig resolves keyring:// references in the secret-bearing config
// fields in place: the graph app secret and provider API keys. The first
// resolution failure is returned so a bad reference surfaces at startup
// rather than as a confusing auth error later.
func ResolveConfig(cfg *config.Config, store Store) error {
	resolved, err := ResolveKeyringURI(store, cfg.Graph.AppSecret)
	if err != nil {
		return err
	}
	cfg.Graph.AppSecret = resolved

	for name, pc := range cfg.Providers {
		resolved, err := ResolveKeyringURI(store, pc.APIKey)
		if err != nil {
			return err
		}
		pc.APIKey = resolved
		cfg.Providers[name] = pc
	}

	return nil
}
