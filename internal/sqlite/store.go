// Package sqlite persists the locally materialized collection and the
// device-local scheduling state: profiles and posts mirrored from the
// sync collaborator, the day seed table, and the set of day keys with
// a scheduled reminder.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store implements the profile, post, seed, and reminder-state
// repositories over a single SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path, verifies the
// connection, and bootstraps the schema. Use ":memory:" for an
// ephemeral store. The caller should call Close when done.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			owner_id              TEXT PRIMARY KEY,
			first_name            TEXT NOT NULL DEFAULT '',
			last_name             TEXT NOT NULL DEFAULT '',
			phone_number          INTEGER NOT NULL DEFAULT 0,
			email                 TEXT NOT NULL DEFAULT '',
			friend_ids            TEXT NOT NULL DEFAULT '[]',
			blocked_ids           TEXT NOT NULL DEFAULT '[]',
			blocking_ids          TEXT NOT NULL DEFAULT '[]',
			hidden_post_ids       TEXT NOT NULL DEFAULT '[]',
			allows_mature_content INTEGER NOT NULL DEFAULT 0,
			image_data            BLOB,
			most_recent_post_id   TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS posts (
			id                 TEXT PRIMARY KEY,
			owner_id           TEXT NOT NULL,
			owner_name         TEXT NOT NULL DEFAULT '',
			shared_owner_ids   TEXT NOT NULL DEFAULT '[]',
			posted_at          TIMESTAMP NOT NULL,
			expected_at        TIMESTAMP,
			full_title         TEXT NOT NULL DEFAULT '',
			title              TEXT NOT NULL DEFAULT '',
			emoji              TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '',
			has_mature_content INTEGER NOT NULL DEFAULT 0,
			image_data         BLOB
		);
		CREATE INDEX IF NOT EXISTS idx_posts_owner ON posts(owner_id);

		CREATE TABLE IF NOT EXISTS day_seed (
			position INTEGER PRIMARY KEY,
			value    REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reminders (
			day_key     TEXT PRIMARY KEY,
			firing_time TIMESTAMP NOT NULL
		);`)
	return err
}

// id lists are stored as JSON arrays so the shared-audience lookup can
// run through json_each on the SQL side.

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode id list: %w", err)
	}
	return string(b), nil
}

func decodeIDs(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return ids, nil
}

// execTx runs fn inside a transaction.
func (s *Store) execTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
