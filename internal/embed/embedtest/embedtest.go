// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package embedtest provides a deterministic offline embedding provider.
// Identical input always yields the identical unit vector, which is exactly
// the contract the duplicate-suppression tests rely on. It is also wired as
// the "mock" provider so the CLI works without any API key.
package embedtest

import (
	"context"
	"hash/fnv"
	"math"
)

// DefaultDimensions mirrors a small sentence-transformer output size.
const DefaultDimensions = 384

// Provider generates pseudo-random unit vectors seeded by an FNV hash of
// the input text.
type Provider struct {
	dimensions int
}

// New returns a Provider with the given dimensionality; dims <= 0 uses
// DefaultDimensions.
func New(dims int) *Provider {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Provider{dimensions: dims}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Dimensions() int { return p.dimensions }

func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))

	// LCG seeded by the text hash gives a stable pseudo-random vector.
	seed := h.Sum64()
	vec := make([]float32, p.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(vec), nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
