// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	recallerr "github.com/openclaw/recall/pkg/errors"
)

// DefaultModel is used when no embedding model is configured.
const DefaultModel = "text-embedding-3-small"

// Config holds OpenAI embedding provider configuration.
type Config struct {
	APIKey     string
	Model      string
	Dimensions int
	BaseURL    string // optional, useful for testing against a mock server
}

// Provider implements embed.Provider using the OpenAI embeddings API.
type Provider struct {
	client openaisdk.Client
	config Config
}

// New creates a new OpenAI embedding provider. Returns an error if the API
// key is missing or the dimension is not positive.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, recallerr.New(recallerr.CodeEmbedProviderConfigInvalid,
			"openai: missing api_key in config", recallerr.FieldProvider("openai"))
	}
	if cfg.Dimensions <= 0 {
		return nil, recallerr.New(recallerr.CodeEmbedProviderConfigInvalid,
			"openai: dimensions must be positive", recallerr.FieldProvider("openai"))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Dimensions() int { return p.config.Dimensions }

// Embed encodes a single text. The Dimensions request parameter asks the API
// to truncate the native model output to the configured size so all deployed
// vectors share one dimensionality.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model:      openaisdk.EmbeddingModel(p.config.Model),
		Input:      openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Dimensions: openaisdk.Int(int64(p.config.Dimensions)),
	})
	if err != nil {
		return nil, recallerr.Wrapf(err, recallerr.CodeMemoryEmbeddingUnavailable,
			"openai: embedding with %s", p.config.Model)
	}
	if len(resp.Data) == 0 {
		return nil, recallerr.New(recallerr.CodeMemoryEmbeddingUnavailable,
			"openai: no embedding returned", recallerr.FieldProvider("openai"))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
