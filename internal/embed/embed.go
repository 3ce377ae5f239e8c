// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package embed defines the embedding provider contract. Concrete providers
// live in subpackages (openai, google, embedtest) and are selected by name
// at wiring time.
package embed

import "context"

// Provider turns text into a fixed-dimension vector. Implementations are
// expensive to construct (remote client or model load) and are reused for
// the lifetime of the process.
type Provider interface {
	// Embed encodes text into a vector of exactly Dimensions() floats.
	// The store layer owns instruction prefixing and unit normalization;
	// providers return the model output as-is.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed output size of this provider.
	Dimensions() int

	// Name identifies the provider for logging and error context.
	Name() string
}
