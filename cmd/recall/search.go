// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclaw/recall/internal/memory"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().Int("limit", 5, "maximum number of results")
	cmd.Flags().Float64("min-score", memory.DefaultMinScore, "minimum similarity score in (0,1]")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := wireMemoryStore(cfg)
	defer func() { _ = store.Close() }()

	results, err := store.Search(cmd.Context(), query, limit, minScore)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if results == nil {
			results = []memory.SearchResult{}
		}
		return json.NewEncoder(out).Encode(results)
	}

	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No matching memories.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "Found %d matching memories:\n", len(results))
	_, _ = fmt.Fprintln(out, strings.Repeat("-", 50))
	for i, r := range results {
		_, _ = fmt.Fprintf(out, "%d. [%s] %s\n", i+1, r.Category, r.Text)
		_, _ = fmt.Fprintf(out, "   score: %.1f%% | importance: %.2f\n\n", r.Score*100, r.Importance)
	}
	return nil
}
