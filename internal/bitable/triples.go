// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package bitable

import (
	"context"
	"time"

	"github.com/openclaw/recall/internal/graph"
)

// Field names in the knowledge graph table. The bilingual labels are part of
// the table schema and must match what Provision creates.
const (
	FieldSubject    = "主语(Subject)"
	FieldPredicate  = "谓语(Predicate)"
	FieldObject     = "宾语(Object)"
	FieldConfidence = "置信度(Confidence)"
	FieldSource     = "来源(Source)"
	FieldCreatedAt  = "创建时间"
)

var _ graph.Backend = (*TripleBackend)(nil)

// TripleBackend adapts a Bitable table to the graph.Backend contract.
type TripleBackend struct {
	client *Client

	// now is swappable in tests.
	now func() time.Time
}

// NewTripleBackend wraps a client.
func NewTripleBackend(client *Client) *TripleBackend {
	return &TripleBackend{client: client, now: time.Now}
}

// Insert appends a triple as a table row.
func (b *TripleBackend) Insert(ctx context.Context, t graph.Triple) (string, error) {
	createdAt := t.CreatedAt
	if createdAt == 0 {
		createdAt = b.now().UnixMilli()
	}

	return b.client.InsertRecord(ctx, map[string]any{
		FieldSubject:    t.Subject,
		FieldPredicate:  t.Predicate,
		FieldObject:     t.Object,
		FieldConfidence: t.Confidence,
		FieldSource:     t.Source,
		FieldCreatedAt:  createdAt,
	})
}

// Search queries the table with exact-match conditions derived from the
// filter.
func (b *TripleBackend) Search(ctx context.Context, f graph.Filter) ([]graph.Triple, error) {
	var conditions []FilterCondition
	if f.Subject != "" {
		conditions = append(conditions, FilterCondition{FieldName: FieldSubject, Operator: "is", Value: []string{f.Subject}})
	}
	if f.Predicate != "" {
		conditions = append(conditions, FilterCondition{FieldName: FieldPredicate, Operator: "is", Value: []string{f.Predicate}})
	}
	if f.Object != "" {
		conditions = append(conditions, FilterCondition{FieldName: FieldObject, Operator: "is", Value: []string{f.Object}})
	}

	items, err := b.client.SearchRecords(ctx, conditions, f.Limit)
	if err != nil {
		return nil, err
	}

	triples := make([]graph.Triple, 0, len(items))
	for _, item := range items {
		triples = append(triples, graph.Triple{
			RecordID:   item.RecordID,
			Subject:    fieldString(item.Fields, FieldSubject),
			Predicate:  fieldString(item.Fields, FieldPredicate),
			Object:     fieldString(item.Fields, FieldObject),
			Confidence: fieldFloat(item.Fields, FieldConfidence, 1.0),
			Source:     fieldString(item.Fields, FieldSource),
			CreatedAt:  int64(fieldFloat(item.Fields, FieldCreatedAt, 0)),
		})
	}
	return triples, nil
}

// Text fields sometimes come back as rich-text segment lists instead of
// plain strings.
func fieldString(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []any:
		var out string
		for _, seg := range v {
			if m, ok := seg.(map[string]any); ok {
				if s, ok := m["text"].(string); ok {
					out += s
				}
			}
		}
		return out
	default:
		return ""
	}
}

func fieldFloat(fields map[string]any, name string, fallback float64) float64 {
	if v, ok := fields[name].(float64); ok {
		return v
	}
	return fallback
}
