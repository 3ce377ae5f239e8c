// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/openclaw/recall/internal/graph"
)

func newReasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reason <subject> [question...]",
		Short: "Answer a question from stored triples",
		Long:  "Look up the triples for a subject, optionally narrowed by predicate. The stored assertions are the answer; no inference is applied.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReason,
	}

	cmd.Flags().String("predicate", "", "narrow to one relation")
	cmd.Flags().Int("limit", graph.DefaultQueryLimit, "maximum number of results")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runReason(cmd *cobra.Command, args []string) error {
	subject := args[0]
	question := strings.Join(args[1:], " ")
	predicate, _ := cmd.Flags().GetString("predicate")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := wireGraphStore(cfg)
	if err != nil {
		return err
	}

	triples, err := store.SimpleReasoning(cmd.Context(), question, graph.Filter{
		Subject:   subject,
		Predicate: predicate,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return printTriples(cmd, triples, format)
}
