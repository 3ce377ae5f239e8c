// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package memory implements the semantic memory store: it embeds free text,
// suppresses near-duplicates, and serves similarity search over a vector
// index. The embedding provider and the index are external collaborators
// reached through the embed.Provider and Index contracts.
package memory

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/recall/internal/embed"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

const (
	// DuplicateThreshold is the similarity score above which a new text is
	// treated as a near-duplicate of an existing record and not inserted.
	// It lives in the same score space as Score.
	DuplicateThreshold = 0.95

	// DefaultImportance applies when the caller does not supply one.
	DefaultImportance = 0.7

	// DefaultMinScore applies to searches without an explicit threshold.
	DefaultMinScore = 0.5

	// embedInstruction is the BGE-style retrieval instruction prepended to
	// every text before encoding.
	embedInstruction = "为这个句子生成表示："
)

// Score converts a non-negative squared L2 distance into a similarity
// score in (0, 1]: 1 for an exact match, monotonically decreasing toward 0.
func Score(distance float64) float64 {
	return 1 / (1 + distance)
}

// ProviderFunc lazily constructs the embedding provider. Model loading and
// client construction are deferred to first use.
type ProviderFunc func() (embed.Provider, error)

// IndexFunc lazily opens the vector index.
type IndexFunc func() (Index, error)

// Store is the semantic memory store. All methods are safe for concurrent
// use; Remember is serialized so the duplicate probe and the insert act as
// one unit.
type Store struct {
	newProvider ProviderFunc
	newIndex    IndexFunc

	initOnce sync.Once
	initErr  error
	provider embed.Provider
	index    Index

	mu     sync.Mutex // serializes Remember
	logger *slog.Logger
}

// NewStore creates a Store whose external handles are initialized on first
// use. Construction itself never touches the network or the filesystem.
func NewStore(newProvider ProviderFunc, newIndex IndexFunc) *Store {
	return &Store{
		newProvider: newProvider,
		newIndex:    newIndex,
		logger:      slog.Default(),
	}
}

// NewStoreWith creates a Store around already-constructed collaborators.
func NewStoreWith(provider embed.Provider, index Index) *Store {
	s := &Store{logger: slog.Default()}
	s.initOnce.Do(func() {
		s.provider = provider
		s.index = index
	})
	return s
}

func (s *Store) ensureInit() error {
	s.initOnce.Do(func() {
		provider, err := s.newProvider()
		if err != nil {
			s.initErr = recallerr.Wrapf(err, recallerr.CodeMemoryEmbeddingUnavailable, "initializing embedding provider")
			return
		}

		index, err := s.newIndex()
		if err != nil {
			s.initErr = recallerr.Wrapf(err, recallerr.CodeMemoryIndexOpenFailure, "opening vector index")
			return
		}

		s.provider = provider
		s.index = index
		s.logger.Info("memory store initialized",
			"provider", provider.Name(),
			"dimensions", provider.Dimensions(),
		)
	})
	return s.initErr
}

// EmbedText encodes text with the retrieval instruction prefix and
// normalizes the result to unit length.
func (s *Store) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	vec, err := s.provider.Embed(ctx, embedInstruction+text)
	if err != nil {
		return nil, recallerr.Wrapf(err, recallerr.CodeMemoryEmbeddingUnavailable, "encoding text")
	}

	return normalize(vec), nil
}

// Remember embeds text, checks for a near-duplicate, and inserts a new
// record. importance is expected in [0,1] but not enforced beyond the range
// assumption; category must come from the closed enumeration.
func (s *Store) Remember(ctx context.Context, text string, category Category, importance float64) (*StoreResult, error) {
	if text == "" {
		return nil, recallerr.New(recallerr.CodeMemoryInvalidInput, "text must not be empty")
	}
	if _, ok := ParseCategory(string(category)); !ok || category == "" {
		return nil, recallerr.Errorf(recallerr.CodeMemoryInvalidInput, "unknown category %q", category)
	}

	vec, err := s.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	// The probe and the insert must not interleave with another Remember,
	// otherwise two racing calls can both pass the duplicate check.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isDuplicate(ctx, vec) {
		return &StoreResult{Status: StatusDuplicate}, nil
	}

	rec := &Record{
		ID:          uuid.NewString(),
		Text:        text,
		Vector:      vec,
		Category:    category,
		Importance:  importance,
		CreatedAt:   time.Now().UnixMilli(),
		AccessCount: 0,
	}

	if err := s.index.Insert(ctx, rec); err != nil {
		return nil, recallerr.Wrap(err, recallerr.CodeMemoryIndexWriteFailure, "inserting memory",
			recallerr.FieldRecordID(rec.ID))
	}

	return &StoreResult{Status: StatusSuccess, ID: rec.ID, Text: text}, nil
}

// isDuplicate probes the index for the nearest existing record. A failed
// probe is treated as "no duplicate found" so that writes stay available
// when search is degraded.
func (s *Store) isDuplicate(ctx context.Context, vec []float32) bool {
	matches, err := s.index.Nearest(ctx, vec, 1)
	if err != nil {
		s.logger.Warn("duplicate probe failed, storing anyway", "error", err)
		return false
	}
	return len(matches) > 0 && Score(matches[0].Distance) > DuplicateThreshold
}

// Search embeds the query text and returns up to limit records whose
// similarity score is at least minScore, in score-descending order.
func (s *Store) Search(ctx context.Context, query string, limit int, minScore float64) ([]SearchResult, error) {
	if query == "" {
		return nil, recallerr.New(recallerr.CodeMemoryInvalidInput, "query must not be empty")
	}

	vec, err := s.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.SearchVector(ctx, vec, limit, minScore)
}

// SearchVector runs the nearest-neighbor lookup for an already-computed
// query vector. An empty index yields an empty result, not an error.
func (s *Store) SearchVector(ctx context.Context, vec []float32, limit int, minScore float64) ([]SearchResult, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}

	matches, err := s.index.Nearest(ctx, vec, limit)
	if err != nil {
		return nil, recallerr.Wrap(err, recallerr.CodeMemoryIndexReadFailure, "searching memories")
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		score := Score(m.Distance)
		if score < minScore {
			continue
		}
		results = append(results, SearchResult{
			ID:         m.Record.ID,
			Text:       m.Record.Text,
			Category:   m.Record.Category,
			Importance: m.Record.Importance,
			Score:      score,
			CreatedAt:  m.Record.CreatedAt,
		})
	}

	return results, nil
}

// Close releases the index if it was ever opened.
func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
