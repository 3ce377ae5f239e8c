// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/openclaw/recall/internal/memory"
)

var _ memory.Index = (*InMemory)(nil)

// InMemory is an exact-scan vector index held entirely in process memory.
// It is used by tests and by builds where the SQLite backend is not
// available. Distances are squared L2, matching the persistent index.
type InMemory struct {
	mu      sync.RWMutex
	records []memory.Record
	closed  bool
}

// NewInMemory returns an empty in-memory index.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Insert appends a copy of the record.
func (m *InMemory) Insert(_ context.Context, rec *memory.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("index is closed")
	}

	cp := *rec
	cp.Vector = append([]float32(nil), rec.Vector...)
	m.records = append(m.records, cp)
	return nil
}

// Nearest scans every record and returns the k closest by squared L2
// distance.
func (m *InMemory) Nearest(_ context.Context, vector []float32, k int) ([]memory.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("index is closed")
	}

	matches := make([]memory.Match, 0, len(m.records))
	for _, rec := range m.records {
		matches = append(matches, memory.Match{
			Record:   rec,
			Distance: l2(vector, rec.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len returns the number of stored records.
func (m *InMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close marks the index closed; further operations fail.
func (m *InMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}

func l2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	// Dimension mismatches contribute their full magnitude.
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		sum += float64(b[i]) * float64(b[i])
	}
	// Squared, not rooted: the score conversion 1/(1+d) is defined over
	// squared distances, as is the duplicate threshold.
	return sum
}
