package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
)

const currentSchemaVersion = 2

// Storage is the on-device adapter: a SQLite document store with one
// row per (user, workspace) scope holding the serialized group list.
// It also persists the workspace registry and the last-selected-group
// state the popup views share.
type Storage struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and runs migrations.
func New(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// Path returns the database file path. The sync watcher monitors it.
func (s *Storage) Path() string { return s.path }

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }

// Ping verifies the database is reachable and writable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table missing or empty, start fresh.
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the scope and workspace tables.
func (s *Storage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS scopes (
			user_id      TEXT NOT NULL,
			workspace_id TEXT NOT NULL,
			groups       TEXT NOT NULL DEFAULT '[]',
			updated_at   TEXT NOT NULL,
			PRIMARY KEY (user_id, workspace_id)
		);

		CREATE TABLE IF NOT EXISTS workspaces (
			id           TEXT PRIMARY KEY NOT NULL,
			user_id      TEXT NOT NULL,
			name         TEXT NOT NULL,
			storage_mode TEXT NOT NULL DEFAULT 'local'
		);

		CREATE INDEX IF NOT EXISTS idx_workspaces_user_id ON workspaces(user_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds last-selected-group bookkeeping.
func (s *Storage) migrateV2() error {
	migration := `
		CREATE TABLE IF NOT EXISTS selected_groups (
			user_id      TEXT NOT NULL,
			workspace_id TEXT NOT NULL,
			group_id     TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			PRIMARY KEY (user_id, workspace_id)
		);

		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Load reads the group list for a scope. A missing scope yields an
// empty list.
func (s *Storage) Load(ctx context.Context, scope store.Scope) ([]domain.Group, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT groups FROM scopes WHERE user_id = ? AND workspace_id = ?",
		scope.UserID, scope.WorkspaceID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Group{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scope %s: %w", scope.Key(), err)
	}

	var groups []domain.Group
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		return nil, fmt.Errorf("failed to decode scope %s: %w", scope.Key(), err)
	}
	return groups, nil
}

// Save upserts the group list for a scope.
func (s *Storage) Save(ctx context.Context, scope store.Scope, groups []domain.Group) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if groups == nil {
		groups = []domain.Group{}
	}

	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to encode scope %s: %w", scope.Key(), err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scopes (user_id, workspace_id, groups, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, workspace_id)
		DO UPDATE SET groups = excluded.groups, updated_at = excluded.updated_at`,
		scope.UserID, scope.WorkspaceID, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save scope %s: %w", scope.Key(), err)
	}
	return nil
}

// Delete removes a scope. Deleting an unknown scope is a no-op.
func (s *Storage) Delete(ctx context.Context, scope store.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM scopes WHERE user_id = ? AND workspace_id = ?",
		scope.UserID, scope.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete scope %s: %w", scope.Key(), err)
	}
	return nil
}
