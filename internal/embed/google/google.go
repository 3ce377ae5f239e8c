// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	recallerr "github.com/openclaw/recall/pkg/errors"
)

// DefaultModel is used when no embedding model is configured.
const DefaultModel = "gemini-embedding-001"

// Config holds Google embedding provider configuration.
type Config struct {
	APIKey     string
	Model      string
	Dimensions int
}

// Provider implements embed.Provider using the Gemini embedding API.
type Provider struct {
	client *genai.Client
	config Config
}

// New creates a new Google embedding provider. Returns an error if the API
// key is missing or the dimension is not positive.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, recallerr.New(recallerr.CodeEmbedProviderConfigInvalid,
			"google: missing api_key in config", recallerr.FieldProvider("google"))
	}
	if cfg.Dimensions <= 0 {
		return nil, recallerr.New(recallerr.CodeEmbedProviderConfigInvalid,
			"google: dimensions must be positive", recallerr.FieldProvider("google"))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, recallerr.Wrapf(err, recallerr.CodeMemoryEmbeddingUnavailable, "google: creating client")
	}

	return &Provider{client: client, config: cfg}, nil
}

func (p *Provider) Name() string { return "google" }

func (p *Provider) Dimensions() int { return p.config.Dimensions }

// Embed encodes a single text, asking the API to emit vectors of the
// configured dimensionality.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, p.config.Model,
		genai.Text(text),
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(p.config.Dimensions)),
		},
	)
	if err != nil {
		return nil, recallerr.Wrapf(err, recallerr.CodeMemoryEmbeddingUnavailable,
			"google: embedding with %s", p.config.Model)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, recallerr.New(recallerr.CodeMemoryEmbeddingUnavailable,
			"google: no embedding returned", recallerr.FieldProvider("google"))
	}

	return resp.Embeddings[0].Values, nil
}
