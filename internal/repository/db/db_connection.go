package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// single writer; also keeps ":memory:" databases on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const schemaStoves = `
CREATE TABLE IF NOT EXISTS stoves (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stove_id TEXT UNIQUE NOT NULL CHECK (length(stove_id) <= 50),
    model TEXT NOT NULL,
    pairing_code TEXT,
    api_key TEXT UNIQUE,
    user_id INTEGER REFERENCES users(id),
    status TEXT NOT NULL DEFAULT 'unpaired' CHECK (status IN ('unpaired', 'paired')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// stove_usage.stove_id is a logical reference to stoves.stove_id, not a foreign key.
const schemaStoveUsage = `
CREATE TABLE IF NOT EXISTS stove_usage (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stove_id TEXT NOT NULL,
    usage_date TEXT NOT NULL,
    cooking_events INTEGER NOT NULL CHECK (cooking_events >= 0),
    total_minutes INTEGER NOT NULL CHECK (total_minutes >= 0),
    fuel_used_kg REAL NOT NULL CHECK (fuel_used_kg >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const schemaStoveUsageIndex = `
CREATE INDEX IF NOT EXISTS idx_stove_usage_stove_date ON stove_usage (stove_id, usage_date);
`

const schemaStoveEvents = `
CREATE TABLE IF NOT EXISTS stove_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    stove_id TEXT,
    message TEXT NOT NULL,
    meta TEXT
);
`

const schemaStoveEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_stove_events_stove ON stove_events (stove_id, occurred_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaStoves,
		schemaStoveUsage,
		schemaStoveUsageIndex,
		schemaStoveEvents,
		schemaStoveEventsIndex,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
