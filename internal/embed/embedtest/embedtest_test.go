// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package embedtest_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/recall/internal/embed/embedtest"
)

func TestProvider_Deterministic(t *testing.T) {
	ctx := context.Background()
	p := embedtest.New(64)

	a, err := p.Embed(ctx, "老板喜欢吃川菜")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "老板喜欢吃川菜")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := p.Embed(ctx, "完全不同的句子")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestProvider_UnitNorm(t *testing.T) {
	p := embedtest.New(0)
	assert.Equal(t, embedtest.DefaultDimensions, p.Dimensions())

	vec, err := p.Embed(context.Background(), "any text at all")
	require.NoError(t, err)
	require.Len(t, vec, embedtest.DefaultDimensions)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}
