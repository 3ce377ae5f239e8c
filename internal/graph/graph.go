// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package graph implements the knowledge graph: subject-predicate-object
// triples stored in a remote tabular backend. The graph is append-only and
// performs no deduplication; repeated assertions are kept as independent
// rows.
package graph

import (
	"context"
	"log/slog"

	recallerr "github.com/openclaw/recall/pkg/errors"
)

// DefaultConfidence is what API boundaries assign when a caller omits the
// confidence entirely. An explicit 0 is a valid value and is stored as-is.
const DefaultConfidence = 1.0

// DefaultQueryLimit bounds a query when the caller does not set a limit.
const DefaultQueryLimit = 100

// Triple is a single knowledge assertion.
type Triple struct {
	RecordID   string  `json:"record_id,omitempty"`
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
	CreatedAt  int64   `json:"created_at,omitempty"` // epoch milliseconds
}

// Filter selects triples by exact match on any combination of components.
// Empty fields are unconstrained; set fields combine conjunctively.
type Filter struct {
	Subject   string
	Predicate string
	Object    string
	Limit     int
}

// Neighborhood is the one-hop view around an entity: triples where it
// appears as subject, and triples where it appears as object.
type Neighborhood struct {
	Entity    string   `json:"entity"`
	AsSubject []Triple `json:"as_subject"`
	AsObject  []Triple `json:"as_object"`
}

// Backend is the remote triple table. Implementations live elsewhere so the
// graph logic stays independent of any vendor API.
type Backend interface {
	Insert(ctx context.Context, t Triple) (recordID string, err error)
	Search(ctx context.Context, f Filter) ([]Triple, error)
}

// Store is the knowledge graph store.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore wraps a backend. A nil logger falls back to slog.Default.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// StoreTriple validates and appends a triple. Subject, predicate, and
// object must all be non-empty; confidence must lie in [0, 1]. The store
// does not default a zero confidence, so callers that distinguish "omitted"
// from "zero" must apply DefaultConfidence themselves.
func (s *Store) StoreTriple(ctx context.Context, t Triple) (Triple, error) {
	if t.Subject == "" || t.Predicate == "" || t.Object == "" {
		return Triple{}, recallerr.New(recallerr.CodeGraphInvalidInput,
			"subject, predicate, and object must all be non-empty")
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return Triple{}, recallerr.Errorf(recallerr.CodeGraphInvalidInput,
			"confidence %v out of range [0, 1]", t.Confidence)
	}

	id, err := s.backend.Insert(ctx, t)
	if err != nil {
		return Triple{}, err
	}
	t.RecordID = id

	s.logger.Debug("stored triple",
		"subject", t.Subject, "predicate", t.Predicate, "object", t.Object)
	return t, nil
}

// Query returns triples matching the filter. An empty filter returns up to
// the default limit of everything.
func (s *Store) Query(ctx context.Context, f Filter) ([]Triple, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultQueryLimit
	}
	return s.backend.Search(ctx, f)
}

// FindRelated returns the one-hop neighborhood of an entity: all triples
// with it as subject and all triples with it as object. The two lookups are
// independent; a failure in either fails the whole call.
func (s *Store) FindRelated(ctx context.Context, entity string, limit int) (Neighborhood, error) {
	if entity == "" {
		return Neighborhood{}, recallerr.New(recallerr.CodeGraphInvalidInput, "entity must be non-empty")
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	asSubject, err := s.backend.Search(ctx, Filter{Subject: entity, Limit: limit})
	if err != nil {
		return Neighborhood{}, err
	}
	asObject, err := s.backend.Search(ctx, Filter{Object: entity, Limit: limit})
	if err != nil {
		return Neighborhood{}, err
	}

	return Neighborhood{Entity: entity, AsSubject: asSubject, AsObject: asObject}, nil
}

// SimpleReasoning answers a question by returning the triples matching the
// filter verbatim. No inference is performed; chaining or scoring is left to
// the caller reading the result.
func (s *Store) SimpleReasoning(ctx context.Context, question string, f Filter) ([]Triple, error) {
	if question != "" {
		s.logger.Debug("reasoning over triples", "question", question)
	}
	return s.Query(ctx, f)
}
