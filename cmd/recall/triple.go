// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclaw/recall/internal/graph"
)

func newTripleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triple",
		Short: "Manage knowledge graph triples",
		Long:  "Store and query subject-predicate-object assertions in the remote knowledge graph table.",
	}

	cmd.AddCommand(
		newTripleStoreCmd(),
		newTripleQueryCmd(),
		newTripleRelatedCmd(),
	)

	return cmd
}

func newTripleStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store <subject> <predicate> <object>",
		Short: "Store a triple",
		Args:  cobra.ExactArgs(3),
		RunE:  runTripleStore,
	}

	cmd.Flags().Float64("confidence", graph.DefaultConfidence, "assertion confidence in [0,1]")
	cmd.Flags().String("source", "", "provenance of the assertion")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func newTripleQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query triples by exact match",
		RunE:  runTripleQuery,
	}

	cmd.Flags().String("subject", "", "filter by subject")
	cmd.Flags().String("predicate", "", "filter by predicate")
	cmd.Flags().String("object", "", "filter by object")
	cmd.Flags().Int("limit", graph.DefaultQueryLimit, "maximum number of results")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func newTripleRelatedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "related <entity>",
		Short: "Show the one-hop neighborhood of an entity",
		Args:  cobra.ExactArgs(1),
		RunE:  runTripleRelated,
	}

	cmd.Flags().Int("limit", graph.DefaultQueryLimit, "maximum results per direction")
	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runTripleStore(cmd *cobra.Command, args []string) error {
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	source, _ := cmd.Flags().GetString("source")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := wireGraphStore(cfg)
	if err != nil {
		return err
	}

	triple, err := store.StoreTriple(cmd.Context(), graph.Triple{
		Subject:    args[0],
		Predicate:  args[1],
		Object:     args[2],
		Confidence: confidence,
		Source:     source,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return json.NewEncoder(out).Encode(triple)
	}
	_, _ = fmt.Fprintf(out, "Stored [%s]: %s --[%s]--> %s\n",
		triple.RecordID, triple.Subject, triple.Predicate, triple.Object)
	return nil
}

func runTripleQuery(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	predicate, _ := cmd.Flags().GetString("predicate")
	object, _ := cmd.Flags().GetString("object")
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

	triples, err := store.Query(cmd.Context(), graph.Filter{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return printTriples(cmd, triples, format)
}

func runTripleRelated(cmd *cobra.Command, args []string) error {
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

	nb, err := store.FindRelated(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return json.NewEncoder(out).Encode(nb)
	}

	_, _ = fmt.Fprintf(out, "%s as subject (%d):\n", nb.Entity, len(nb.AsSubject))
	for _, t := range nb.AsSubject {
		_, _ = fmt.Fprintf(out, "  %s --[%s]--> %s\n", t.Subject, t.Predicate, t.Object)
	}
	_, _ = fmt.Fprintf(out, "%s as object (%d):\n", nb.Entity, len(nb.AsObject))
	for _, t := range nb.AsObject {
		_, _ = fmt.Fprintf(out, "  %s --[%s]--> %s\n", t.Subject, t.Predicate, t.Object)
	}
	return nil
}

func printTriples(cmd *cobra.Command, triples []graph.Triple, format string) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		if triples == nil {
			triples = []graph.Triple{}
		}
		return json.NewEncoder(out).Encode(triples)
	}

	_, _ = fmt.Fprintf(out, "Found %d triples:\n", len(triples))
	for _, t := range triples {
		_, _ = fmt.Fprintf(out, "  %s --[%s]--> %s\n", t.Subject, t.Predicate, t.Object)
	}
	return nil
}
