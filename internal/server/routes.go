// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openclaw/recall/internal/graph"
	"github.com/openclaw/recall/internal/memory"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

func (s *Server) registerRoutes() {
	// Memory endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "remember",
		Method:      http.MethodPost,
		Path:        "/api/v1/memories",
		Summary:     "Store a memory",
		Tags:        []string{"memories"},
	}, s.handleRemember)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-memories",
		Method:      http.MethodGet,
		Path:        "/api/v1/memories/search",
		Summary:     "Semantic search over memories",
		Tags:        []string{"memories"},
	}, s.handleSearchMemories)

	// Knowledge graph endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "store-triple",
		Method:      http.MethodPost,
		Path:        "/api/v1/triples",
		Summary:     "Store a knowledge triple",
		Tags:        []string{"graph"},
	}, s.handleStoreTriple)

	huma.Register(s.api, huma.Operation{
		OperationID: "query-triples",
		Method:      http.MethodGet,
		Path:        "/api/v1/triples",
		Summary:     "Query knowledge triples",
		Tags:        []string{"graph"},
	}, s.handleQueryTriples)

	huma.Register(s.api, huma.Operation{
		OperationID: "find-related",
		Method:      http.MethodGet,
		Path:        "/api/v1/triples/{entity}/related",
		Summary:     "One-hop neighborhood of an entity",
		Tags:        []string{"graph"},
	}, s.handleFindRelated)

	huma.Register(s.api, huma.Operation{
		OperationID: "reason",
		Method:      http.MethodGet,
		Path:        "/api/v1/reason",
		Summary:     "Answer a question from stored triples",
		Tags:        []string{"graph"},
	}, s.handleReason)
}

// --- Request/Response types for huma ---

type rememberInput struct {
	Body struct {
		Text       string   `json:"text" minLength:"1" doc:"Memory text"`
		Category   string   `json:"category,omitempty" doc:"Memory category (preference, fact, decision, entity, other)"`
		Importance *float64 `json:"importance,omitempty" minimum:"0" maximum:"1" doc:"Importance weight"`
	}
}
type rememberOutput struct {
	Body memory.StoreResult
}

type searchMemoriesInput struct {
	Query    string  `query:"q" minLength:"1" doc:"Search query"`
	Limit    int     `query:"limit" default:"5" doc:"Maximum results"`
	MinScore float64 `query:"min_score" default:"0.5" doc:"Minimum similarity score"`
}
type searchMemoriesOutput struct {
	Body struct {
		Results []memory.SearchResult `json:"results"`
	}
}

type storeTripleInput struct {
	Body struct {
		Subject    string   `json:"subject" minLength:"1" doc:"Entity"`
		Predicate  string   `json:"predicate" minLength:"1" doc:"Relation"`
		Object     string   `json:"object" minLength:"1" doc:"Value"`
		Confidence *float64 `json:"confidence,omitempty" minimum:"0" maximum:"1" doc:"Assertion confidence"`
		Source     string   `json:"source,omitempty" doc:"Provenance"`
	}
}
type storeTripleOutput struct {
	Body graph.Triple
}

type queryTriplesInput struct {
	Subject   string `query:"subject" doc:"Filter by subject"`
	Predicate string `query:"predicate" doc:"Filter by predicate"`
	Object    string `query:"object" doc:"Filter by object"`
	Limit     int    `query:"limit" default:"100" doc:"Maximum results"`
}
type queryTriplesOutput struct {
	Body struct {
		Triples []graph.Triple `json:"triples"`
	}
}

type findRelatedInput struct {
	Entity string `path:"entity" doc:"Entity name"`
	Limit  int    `query:"limit" default:"100" doc:"Maximum results per direction"`
}
type findRelatedOutput struct {
	Body graph.Neighborhood
}

type reasonInput struct {
	Question  string `query:"question" doc:"Natural language question, echoed for logging"`
	Subject   string `query:"subject" doc:"Filter by subject"`
	Predicate string `query:"predicate" doc:"Filter by predicate"`
	Object    string `query:"object" doc:"Filter by object"`
	Limit     int    `query:"limit" default:"100" doc:"Maximum results"`
}
type reasonOutput struct {
	Body struct {
		Question string         `json:"question,omitempty"`
		Triples  []graph.Triple `json:"triples"`
	}
}

// --- Handlers ---

func (s *Server) handleRemember(ctx context.Context, input *rememberInput) (*rememberOutput, error) {
	category, ok := memory.ParseCategory(input.Body.Category)
	if !ok {
		return nil, huma.Error422UnprocessableEntity("unknown category " + input.Body.Category)
	}

	// nil means the field was omitted; an explicit 0 is kept.
	importance := memory.DefaultImportance
	if input.Body.Importance != nil {
		importance = *input.Body.Importance
	}

	res, err := s.memories.Remember(ctx, input.Body.Text, category, importance)
	if err != nil {
		return nil, apiError(err)
	}
	return &rememberOutput{Body: *res}, nil
}

func (s *Server) handleSearchMemories(ctx context.Context, input *searchMemoriesInput) (*searchMemoriesOutput, error) {
	results, err := s.memories.Search(ctx, input.Query, input.Limit, input.MinScore)
	if err != nil {
		return nil, apiError(err)
	}
	out := &searchMemoriesOutput{}
	out.Body.Results = results
	if out.Body.Results == nil {
		out.Body.Results = []memory.SearchResult{}
	}
	return out, nil
}

func (s *Server) handleStoreTriple(ctx context.Context, input *storeTripleInput) (*storeTripleOutput, error) {
	confidence := graph.DefaultConfidence
	if input.Body.Confidence != nil {
		confidence = *input.Body.Confidence
	}

	triple, err := s.graph.StoreTriple(ctx, graph.Triple{
		Subject:    input.Body.Subject,
		Predicate:  input.Body.Predicate,
		Object:     input.Body.Object,
		Confidence: confidence,
		Source:     input.Body.Source,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &storeTripleOutput{Body: triple}, nil
}

func (s *Server) handleQueryTriples(ctx context.Context, input *queryTriplesInput) (*queryTriplesOutput, error) {
	triples, err := s.graph.Query(ctx, graph.Filter{
		Subject:   input.Subject,
		Predicate: input.Predicate,
		Object:    input.Object,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, apiError(err)
	}
	out := &queryTriplesOutput{}
	out.Body.Triples = triples
	if out.Body.Triples == nil {
		out.Body.Triples = []graph.Triple{}
	}
	return out, nil
}

func (s *Server) handleFindRelated(ctx context.Context, input *findRelatedInput) (*findRelatedOutput, error) {
	nb, err := s.graph.FindRelated(ctx, input.Entity, input.Limit)
	if err != nil {
		return nil, apiError(err)
	}
	return &findRelatedOutput{Body: nb}, nil
}

func (s *Server) handleReason(ctx context.Context, input *reasonInput) (*reasonOutput, error) {
	triples, err := s.graph.SimpleReasoning(ctx, input.Question, graph.Filter{
		Subject:   input.Subject,
		Predicate: input.Predicate,
		Object:    input.Object,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, apiError(err)
	}
	out := &reasonOutput{}
	out.Body.Question = input.Question
	out.Body.Triples = triples
	if out.Body.Triples == nil {
		out.Body.Triples = []graph.Triple{}
	}
	return out, nil
}

// apiError maps a classified store error onto the matching HTTP status.
func apiError(err error) error {
	return huma.NewError(recallerr.HTTPStatus(err), err.Error())
}
