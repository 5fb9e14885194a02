package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the schemas
// for the event journal and the ship read model.
func InitSQLite(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db, sqliteSchemas); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

var sqliteSchemas = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		event_type TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		target_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		terminal BOOLEAN NOT NULL DEFAULT 0
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_session_seq ON events(session_id, seq);`,
	`CREATE INDEX IF NOT EXISTS idx_events_actor_id ON events(actor_id);`,
	`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);`,
	`CREATE TABLE IF NOT EXISTS ships (
		ship_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		name TEXT,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		destroyed BOOLEAN NOT NULL DEFAULT 0,
		captured BOOLEAN NOT NULL DEFAULT 0,
		hull REAL NOT NULL,
		shield REAL NOT NULL,
		fuel REAL NOT NULL,
		morale REAL NOT NULL,
		state TEXT NOT NULL,
		last_updated DATETIME NOT NULL,
		PRIMARY KEY (session_id, ship_id)
	);`,
}

func createSchemas(db *sql.DB, schemas []string) error {
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
