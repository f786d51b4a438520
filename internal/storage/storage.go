// Package storage persists the whole session database as one mutable
// document keyed by user id. Two implementations exist: a JSON file for
// development and tests, and a SQLite document store for production.
package storage

import (
	"context"

	"aulinha/internal/session"
)

// Storage is the whole-database read/replace collaborator. Load of an empty
// or missing backing store returns an empty database, never an error.
type Storage interface {
	Load(ctx context.Context) (*session.Database, error)
	Save(ctx context.Context, db *session.Database) error
}
