// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/openclaw/recall/internal/bitable"
	"github.com/openclaw/recall/internal/config"
	"github.com/openclaw/recall/internal/embed"
	"github.com/openclaw/recall/internal/embed/embedtest"
	googleembed "github.com/openclaw/recall/internal/embed/google"
	openaiembed "github.com/openclaw/recall/internal/embed/openai"
	"github.com/openclaw/recall/internal/graph"
	"github.com/openclaw/recall/internal/index"
	"github.com/openclaw/recall/internal/memory"
	"github.com/openclaw/recall/internal/secrets"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

// loadConfig materialises the validated config from the global Viper state
// and resolves any keyring:// secret references.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := secrets.ResolveConfig(cfg, secretStoreFactory()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// indexPath resolves where the vector index lives: explicit path, or
// recall.db under the data directory.
func indexPath(cfg *config.Config) (string, error) {
	if cfg.Memory.IndexPath != "" {
		return cfg.Memory.IndexPath, nil
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = config.DefaultDataDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", recallerr.Errorf(recallerr.CodeCLISetupFailure, "creating data directory: %w", err)
	}
	return filepath.Join(dataDir, "recall.db"), nil
}

// wireMemoryStore builds the memory store with lazy provider and index
// construction, so commands that never embed do not pay for either.
func wireMemoryStore(cfg *config.Config) *memory.Store {
	newProvider := func() (embed.Provider, error) {
		switch cfg.Memory.Provider {
		case "openai":
			pc := cfg.Providers["openai"]
			return openaiembed.New(openaiembed.Config{
				APIKey:     pc.APIKey,
				Model:      cfg.Memory.Model,
				Dimensions: cfg.Memory.Dimensions,
				BaseURL:    pc.Endpoint,
			})
		case "google":
			pc := cfg.Providers["google"]
			return googleembed.New(googleembed.Config{
				APIKey:     pc.APIKey,
				Model:      cfg.Memory.Model,
				Dimensions: cfg.Memory.Dimensions,
			})
		case "mock":
			return embedtest.New(cfg.Memory.Dimensions), nil
		default:
			return nil, recallerr.Errorf(recallerr.CodeEmbedProviderUnsupported,
				"unsupported embedding provider %q", cfg.Memory.Provider)
		}
	}

	newIndex := func() (memory.Index, error) {
		path, err := indexPath(cfg)
		if err != nil {
			return nil, err
		}
		idx, err := index.NewSQLite(path, cfg.Memory.Dimensions)
		if err != nil {
			return nil, recallerr.Wrapf(err, recallerr.CodeMemoryIndexOpenFailure, "opening index %s", path)
		}
		return idx, nil
	}

	return memory.NewStore(newProvider, newIndex)
}

// wireGraphStore builds the knowledge graph store over the configured
// Bitable table.
func wireGraphStore(cfg *config.Config) (*graph.Store, error) {
	if cfg.Graph.AppToken == "" || cfg.Graph.TableID == "" {
		return nil, recallerr.New(recallerr.CodeCLISetupFailure,
			"graph.app_token and graph.table_id are not configured; run `recall init` first")
	}

	client, err := bitable.NewClient(bitable.Config{
		Endpoint:  cfg.Graph.Endpoint,
		AppID:     cfg.Graph.AppID,
		AppSecret: cfg.Graph.AppSecret,
		AppToken:  cfg.Graph.AppToken,
		TableID:   cfg.Graph.TableID,
	})
	if err != nil {
		return nil, err
	}

	return graph.NewStore(bitable.NewTripleBackend(client), nil), nil
}
