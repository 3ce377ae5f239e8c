// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclaw/recall/internal/memory"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

func newRememberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <text>",
		Short: "Store a memory",
		Long:  "Embed the text and store it in the vector index. Near-duplicates of an existing memory are reported and skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRemember,
	}

	cmd.Flags().String("category", "", "memory category (preference, fact, decision, entity, other)")
	cmd.Flags().Float64("importance", memory.DefaultImportance, "importance weight in [0,1]")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runRemember(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	rawCategory, _ := cmd.Flags().GetString("category")
	importance, _ := cmd.Flags().GetFloat64("importance")
	format, _ := cmd.Flags().GetString("format")

	category, ok := memory.ParseCategory(rawCategory)
	if !ok {
		return recallerr.Errorf(recallerr.CodeCLIInputInvalid, "unknown category %q", rawCategory)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := wireMemoryStore(cfg)
	defer func() { _ = store.Close() }()

	result, err := store.Remember(cmd.Context(), text, category, importance)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return json.NewEncoder(out).Encode(result)
	}

	switch result.Status {
	case memory.StatusDuplicate:
		_, _ = fmt.Fprintln(out, "Already remembered (near-duplicate).")
	default:
		_, _ = fmt.Fprintf(out, "Remembered [%s]: %s\n", result.ID, result.Text)
	}
	return nil
}
