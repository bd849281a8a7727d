package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
)

// ErrWorkspaceNotFound is returned when a workspace ID is unknown for
// the given user.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ListWorkspaces returns all workspaces registered for a user, in
// name order.
func (s *Storage) ListWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, storage_mode FROM workspaces WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var out []domain.Workspace
	for rows.Next() {
		var ws domain.Workspace
		var mode string
		if err := rows.Scan(&ws.ID, &ws.Name, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		ws.StorageMode = domain.StorageMode(mode)
		out = append(out, ws)
	}
	return out, rows.Err()
}

// GetWorkspace fetches a single workspace record.
func (s *Storage) GetWorkspace(ctx context.Context, userID, workspaceID string) (domain.Workspace, error) {
	var ws domain.Workspace
	var mode string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, storage_mode FROM workspaces WHERE user_id = ? AND id = ?",
		userID, workspaceID,
	).Scan(&ws.ID, &ws.Name, &mode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, workspaceID)
	}
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("failed to get workspace: %w", err)
	}
	ws.StorageMode = domain.StorageMode(mode)
	return ws, nil
}

// PutWorkspace inserts or updates a workspace record.
func (s *Storage) PutWorkspace(ctx context.Context, userID string, ws domain.Workspace) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, user_id, name, storage_mode)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET name = excluded.name, storage_mode = excluded.storage_mode`,
		ws.ID, userID, ws.Name, string(ws.StorageMode),
	)
	if err != nil {
		return fmt.Errorf("failed to put workspace %s: %w", ws.ID, err)
	}
	return nil
}

// DeleteWorkspace removes the workspace record. The scope data is the
// caller's responsibility; the manager deletes it first.
func (s *Storage) DeleteWorkspace(ctx context.Context, userID, workspaceID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM workspaces WHERE user_id = ? AND id = ?",
		userID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete workspace %s: %w", workspaceID, err)
	}
	return nil
}

// SetStorageMode flips the per-workspace mode flag. This is step (5)
// of a storage-mode migration; data movement happens before it.
func (s *Storage) SetStorageMode(ctx context.Context, userID, workspaceID string, mode domain.StorageMode) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE workspaces SET storage_mode = ? WHERE user_id = ? AND id = ?",
		string(mode), userID, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to set storage mode: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, workspaceID)
	}
	return nil
}

// SelectedGroup returns the last-selected group for a scope, or ""
// when none was recorded.
func (s *Storage) SelectedGroup(ctx context.Context, scope store.Scope) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx,
		"SELECT group_id FROM selected_groups WHERE user_id = ? AND workspace_id = ?",
		scope.UserID, scope.WorkspaceID,
	).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get selected group: %w", err)
	}
	return groupID, nil
}

// SetSelectedGroup records the last-selected group for a scope.
func (s *Storage) SetSelectedGroup(ctx context.Context, scope store.Scope, groupID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO selected_groups (user_id, workspace_id, group_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, workspace_id)
		DO UPDATE SET group_id = excluded.group_id, updated_at = excluded.updated_at`,
		scope.UserID, scope.WorkspaceID, groupID, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to set selected group: %w", err)
	}
	return nil
}
