// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/recall/internal/memory"
)

// isolateEnv points HOME and the data directory at temp dirs so commands
// never touch the developer's real config or index.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RECALL_DATA_DIR", t.TempDir())
	t.Setenv("RECALL_MEMORY_PROVIDER", "mock")
	t.Setenv("RECALL_MEMORY_DIMENSIONS", "64")
}

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"init", "remember", "search", "triple", "reason", "serve", "secret", "version"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "recall dev")
}

func TestRememberAndSearch_EndToEnd(t *testing.T) {
	isolateEnv(t)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"remember", "老板喜欢吃川菜", "--category", "preference", "--format", "json"})
	require.NoError(t, root.Execute())

	var stored memory.StoreResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &stored))
	assert.Equal(t, memory.StatusSuccess, stored.Status)
	assert.NotEmpty(t, stored.ID)

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"search", "老板喜欢吃川菜", "--min-score", "0.3", "--format", "json"})
	require.NoError(t, root.Execute())

	var results []memory.SearchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "老板喜欢吃川菜", results[0].Text)
}

func TestRemember_DuplicateReported(t *testing.T) {
	isolateEnv(t)

	run := func() memory.StoreResult {
		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetArgs([]string{"remember", "每天早上喝咖啡", "--format", "json"})
		require.NoError(t, root.Execute())

		var res memory.StoreResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		return res
	}

	assert.Equal(t, memory.StatusSuccess, run().Status)
	assert.Equal(t, memory.StatusDuplicate, run().Status)
}

func TestRemember_UnknownCategory(t *testing.T) {
	isolateEnv(t)

	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"remember", "text", "--category", "banana"})

	assert.Error(t, root.Execute())
}

func TestTripleCmd_RequiresProvisionedGraph(t *testing.T) {
	isolateEnv(t)

	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"triple", "query", "--subject", "老板"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recall init")
}
