// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package history keeps a SQLite journal of room visits for
// quick re-entry ("recently visited"). It consumes the room flow's
// action stream; the flow itself never reads it, so a broken or slow
// journal cannot affect navigation.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/traverse-foundation/traverse/flow"
	"github.com/traverse-foundation/traverse/lib/clock"
	"github.com/traverse-foundation/traverse/lib/sqlitepool"
	"github.com/traverse-foundation/traverse/roomflow"
)

// schema is applied to every connection. Timestamps are stored as
// Unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS visits (
	room_id      TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	visit_count  INTEGER NOT NULL DEFAULT 0,
	last_visited INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visits_by_time ON visits (last_visited DESC);
`

// Visit is one row of the journal.
type Visit struct {
	RoomID      string
	Name        string
	VisitCount  int64
	LastVisited time.Time
}

// Config holds the parameters for opening a Journal.
type Config struct {
	// Path is the database file. Required.
	Path string

	// PoolSize is forwarded to the connection pool.
	PoolSize int

	// Logger receives operational messages. Nil disables logging.
	Logger *slog.Logger

	// Clock supplies visit timestamps for Follow. Defaults to
	// clock.Real().
	Clock clock.Clock
}

// Journal is a SQLite-backed visit journal. Safe for concurrent use.
type Journal struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open creates or opens the journal at cfg.Path.
func Open(cfg Config) (*Journal, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		Schema:   schema,
	})
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &Journal{pool: pool, clock: clk, logger: logger}, nil
}

// Close releases the journal's connections.
func (journal *Journal) Close() error {
	return journal.pool.Close()
}

// RecordVisit upserts a visit: the count increments, the timestamp
// and name advance to the newest visit.
func (journal *Journal) RecordVisit(ctx context.Context, roomID, name string, at time.Time) error {
	if roomID == "" {
		return fmt.Errorf("history: room ID is required")
	}

	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer journal.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO visits (room_id, name, visit_count, last_visited)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (room_id) DO UPDATE SET
			name = excluded.name,
			visit_count = visit_count + 1,
			last_visited = MAX(last_visited, excluded.last_visited)`,
		&sqlitex.ExecOptions{
			Args: []any{roomID, name, at.UnixMilli()},
		})
	if err != nil {
		return fmt.Errorf("history: recording visit to %s: %w", roomID, err)
	}
	return nil
}

// Recent returns up to limit visits, most recent first.
func (journal *Journal) Recent(ctx context.Context, limit int) ([]Visit, error) {
	if limit <= 0 {
		return nil, nil
	}

	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer journal.pool.Put(conn)

	var visits []Visit
	err = sqlitex.Execute(conn, `
		SELECT room_id, name, visit_count, last_visited
		FROM visits
		ORDER BY last_visited DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				visits = append(visits, Visit{
					RoomID:      stmt.ColumnText(0),
					Name:        stmt.ColumnText(1),
					VisitCount:  stmt.ColumnInt64(2),
					LastVisited: time.UnixMilli(stmt.ColumnInt64(3)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("history: listing recent visits: %w", err)
	}
	return visits, nil
}

// Prune deletes entries last visited before the cutoff and reports
// how many were removed.
func (journal *Journal) Prune(ctx context.Context, before time.Time) (int, error) {
	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer journal.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM visits WHERE last_visited < ?", &sqlitex.ExecOptions{
		Args: []any{before.UnixMilli()},
	})
	if err != nil {
		return 0, fmt.Errorf("history: pruning visits: %w", err)
	}
	return conn.Changes(), nil
}

// Follow consumes a room flow action stream, journaling every
// presented room, until ctx is cancelled or the stream closes.
// Run it on its own goroutine. Journal errors are logged and the
// stream continues; navigation history is best-effort.
func (journal *Journal) Follow(ctx context.Context, actions <-chan flow.Action) {
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-actions:
			if !ok {
				return
			}
			presented, ok := action.(roomflow.RoomPresented)
			if !ok {
				continue
			}
			if err := journal.RecordVisit(ctx, presented.ID, presented.Name, journal.clock.Now()); err != nil {
				journal.logger.Warn("recording visit failed",
					"room", presented.ID,
					"error", err)
			}
		}
	}
}
