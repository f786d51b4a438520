package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aulinha/internal/session"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one JSON document per user in a sessions table.
// Documents are validated against the session schema on load, so a corrupt
// row surfaces at startup instead of as a panic mid-conversation.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite connects to the SQLite database at dsn, applies the
// recommended pragmas, and creates the sessions table when missing.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		user_id    TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (*session.Database, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, doc FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	db := session.NewDatabase()
	for rows.Next() {
		var userID, doc string
		if err := rows.Scan(&userID, &doc); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if err := validateSessionDoc([]byte(doc)); err != nil {
			return nil, fmt.Errorf("session document for %s: %w", userID, err)
		}
		u := &session.UserSession{}
		if err := json.Unmarshal([]byte(doc), u); err != nil {
			return nil, fmt.Errorf("parse session for %s: %w", userID, err)
		}
		u.ID = userID
		db.Users[userID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Save(ctx context.Context, db *session.Database) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Whole-database replace semantics: drop rows for users no longer present.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for userID, u := range db.Users {
		doc, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshal session for %s: %w", userID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sessions (user_id, doc, updated_at) VALUES (?, ?, ?)`,
			userID, string(doc), now)
		if err != nil {
			return fmt.Errorf("insert session for %s: %w", userID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
