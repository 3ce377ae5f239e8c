// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package index provides vector index implementations behind the
// memory.Index contract: a persistent SQLite store using sqlite-vec, and an
// exact-scan in-memory store for tests and cgo-free builds.
package index

import (
	"context"
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/openclaw/recall/internal/memory"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ memory.Index = (*SQLite)(nil)

// SQLite implements memory.Index backed by SQLite with sqlite-vec. The vec0
// virtual table holds embeddings; a companion table carries the record
// fields. Match distances are squared L2: vec0 reports the Euclidean root,
// so Nearest squares it before returning.
type SQLite struct {
	db         *sql.DB
	dimensions int
}

// NewSQLite opens (or creates) a SQLite database at dbPath and initialises
// the vec0 virtual table and companion record table. The dimension is fixed
// for the lifetime of the database.
func NewSQLite(dbPath string, dimensions int) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db, dimensions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating memory tables: %w", err)
	}

	return &SQLite{db: db, dimensions: dimensions}, nil
}

func migrate(db *sql.DB, dimensions int) error {
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(id TEXT PRIMARY KEY, embedding float[%d])`,
		dimensions,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return fmt.Errorf("creating memory_vectors virtual table: %w", err)
	}

	const recDDL = `
CREATE TABLE IF NOT EXISTS memory_records (
	id           TEXT PRIMARY KEY,
	text         TEXT NOT NULL,
	category     TEXT NOT NULL,
	importance   REAL NOT NULL,
	created_at   INTEGER NOT NULL,
	access_count INTEGER NOT NULL DEFAULT 0
)`
	if _, err := db.Exec(recDDL); err != nil {
		return fmt.Errorf("creating memory_records table: %w", err)
	}

	return nil
}

// Insert stores a record and its embedding atomically. Records are
// immutable, so a colliding id is an error rather than an upsert.
func (s *SQLite) Insert(ctx context.Context, rec *memory.Record) error {
	if len(rec.Vector) != s.dimensions {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(rec.Vector), s.dimensions)
	}

	blob, err := sqlite_vec.SerializeFloat32(rec.Vector)
	if err != nil {
		return fmt.Errorf("serializing embedding: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memory_vectors(id, embedding) VALUES (?, ?)`,
		rec.ID, blob,
	); err != nil {
		return fmt.Errorf("inserting vector %s: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memory_records(id, text, category, importance, created_at, access_count) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Text, string(rec.Category), rec.Importance, rec.CreatedAt, rec.AccessCount,
	); err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing memory insert: %w", err)
	}
	return nil
}

// Nearest performs a k-nearest-neighbor search and returns matches joined
// with their record fields, in distance-ascending order. Distances are
// squared L2.
func (s *SQLite) Nearest(ctx context.Context, vector []float32, k int) ([]memory.Match, error) {
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, fmt.Errorf("serializing query vector: %w", err)
	}

	const q = `SELECT v.id, v.distance, r.text, r.category, r.importance, r.created_at, r.access_count
FROM memory_vectors v
JOIN memory_records r ON r.id = v.id
WHERE v.embedding MATCH ? AND k = ?
ORDER BY v.distance`

	rows, err := s.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []memory.Match
	for rows.Next() {
		var m memory.Match
		var category string

		if err := rows.Scan(&m.Record.ID, &m.Distance, &m.Record.Text, &category,
			&m.Record.Importance, &m.Record.CreatedAt, &m.Record.AccessCount); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Record.Category = memory.Category(category)
		// vec0's l2 metric takes the square root; the score space does not.
		m.Distance *= m.Distance

		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return matches, nil
}

// Count returns the number of stored records.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
