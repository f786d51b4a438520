package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aulinha/internal/session"
)

// FileStore keeps the database as a single indented JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*session.Database, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.NewDatabase(), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	db := session.NewDatabase()
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return db, nil
}

func (s *FileStore) Save(_ context.Context, db *session.Database) error {
	raw, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	// Write-then-rename so a crashed save never truncates the database.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
