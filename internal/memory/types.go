// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package memory

import "context"

// Category classifies a memory. The set is closed; unknown values are
// rejected at the boundary rather than stored as free text.
type Category string

const (
	CategoryPreference Category = "preference"
	CategoryFact       Category = "fact"
	CategoryDecision   Category = "decision"
	CategoryEntity     Category = "entity"
	CategoryOther      Category = "other"
)

// ParseCategory validates a raw category string. The empty string maps to
// CategoryOther so callers may omit the flag.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryPreference, CategoryFact, CategoryDecision, CategoryEntity, CategoryOther:
		return Category(s), true
	case "":
		return CategoryOther, true
	default:
		return "", false
	}
}

// Record is a single stored memory. Records are immutable after insertion;
// an update is a new record. AccessCount is persisted for forward
// compatibility but not incremented by any read path.
type Record struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Vector      []float32 `json:"-"`
	Category    Category  `json:"category"`
	Importance  float64   `json:"importance"`
	CreatedAt   int64     `json:"created_at"` // epoch milliseconds
	AccessCount int32     `json:"-"`
}

// Match is a record returned from a nearest-neighbor lookup together with
// its squared L2 distance from the query vector.
type Match struct {
	Record   Record
	Distance float64
}

// Index is the vector index the store persists to. Implementations report
// squared L2 distances and return matches in distance-ascending order.
type Index interface {
	Insert(ctx context.Context, rec *Record) error
	Nearest(ctx context.Context, vector []float32, k int) ([]Match, error)
	Close() error
}

// StoreStatus reports the outcome of a store operation.
type StoreStatus string

const (
	StatusSuccess   StoreStatus = "success"
	StatusDuplicate StoreStatus = "duplicate"
)

// StoreResult is the structured outcome of Remember.
type StoreResult struct {
	Status StoreStatus `json:"status"`
	ID     string      `json:"id,omitempty"`
	Text   string      `json:"text,omitempty"`
}

// SearchResult is a single similarity search hit.
type SearchResult struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Importance float64  `json:"importance"`
	Score      float64  `json:"score"`
	CreatedAt  int64    `json:"created_at"`
}
