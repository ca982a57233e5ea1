// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the Traverse-standard SQLite connection
// pool. It wraps zombiezen.com/go/sqlite with the pragmas every
// Traverse store uses: WAL journal mode for concurrent readers,
// NORMAL synchronous (a navigation journal survives process crashes;
// power-failure durability is not worth fsync-per-visit), and a busy
// timeout so write contention waits instead of failing.
//
// The package is intentionally thin. Callers Take a connection, write
// plain SQL through sqlitex, and Put the connection back; there is no
// query builder and no ORM. Connections are not safe for concurrent
// use, the pool is.
package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DefaultPoolSize is used when Config.PoolSize is zero or negative.
// SQLite serializes writes regardless of pool size; extra connections
// only help concurrent readers.
const DefaultPoolSize = 4

// Config holds the parameters for opening a pool. Path is required.
type Config struct {
	// Path is the database file, created if absent. ":memory:" opens
	// an in-memory database; use PoolSize 1 with it, since every
	// in-memory connection is its own database.
	Path string

	// PoolSize is the number of connections. Defaults to
	// DefaultPoolSize when zero or negative.
	PoolSize int

	// Logger receives operational messages. Nil disables logging.
	Logger *slog.Logger

	// Schema, when non-empty, is executed once per connection after
	// the standard pragmas. Use CREATE TABLE IF NOT EXISTS statements
	// so repeated application is harmless.
	Schema string
}

// Pool is a fixed-size pool of SQLite connections. Safe for
// concurrent use; the connections it hands out are not.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are initialized lazily on first
// Take: pragmas first, then Config.Schema. The caller must Close the
// pool when done.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.Schema)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)

	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is available or ctx
// is cancelled. Pair every Take with a deferred Put.
func (pool *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := pool.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe with nil.
func (pool *Pool) Put(conn *sqlite.Conn) {
	pool.inner.Put(conn)
}

// Close closes all connections, blocking until borrowed ones return.
func (pool *Pool) Close() error {
	if err := pool.inner.Close(); err != nil {
		pool.logger.Error("sqlite pool close error", "path", pool.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", pool.path, err)
	}
	pool.logger.Info("sqlite pool closed", "path", pool.path)
	return nil
}

// prepareConnection applies the standard pragmas and the optional
// schema. Runs once per connection, on first use.
func prepareConnection(conn *sqlite.Conn, schema string) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}
	if schema != "" {
		if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
			return fmt.Errorf("sqlitepool: applying schema: %w", err)
		}
	}
	return nil
}
