// Package repository is the downstream persistence collaborator. It only ever
// receives finished, sanitized values: string fields defaulted to "", numeric
// fields to 0, galleries to an empty sequence. Partially-formed records never
// reach this layer.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT '',
	price       REAL NOT NULL DEFAULT 0,
	address     TEXT NOT NULL DEFAULT '',
	area        REAL NOT NULL DEFAULT 0,
	bedrooms    INTEGER NOT NULL DEFAULT 0,
	bathrooms   INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	gallery     TEXT NOT NULL DEFAULT '[]',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dispatch_jobs (
	id          TEXT PRIMARY KEY,
	message     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	attempted   INTEGER NOT NULL DEFAULT 0,
	succeeded   INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMP,
	finished_at TIMESTAMP
);
`

// Open connects to the SQLite database at path (":memory:" for tests) and
// applies the schema. The driver is cgo-free, so the CLIs stay a single
// static binary.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc/sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY on concurrent statements.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
