package manager

import (
	"context"
	"fmt"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
	syncbus "github.com/tabvault/tabvault/internal/sync"
)

// ChangeStorageMode migrates a workspace's data between adapters:
//
//  1. ping the destination adapter; abort with no side effects if
//     access is denied or the store is unreachable
//  2. load fresh data from the SOURCE adapter (never the possibly
//     stale in-memory view)
//  3. save that data to the destination adapter
//  4. delete from the source adapter
//  5. persist the new mode flag
//  6. broadcast the mode change
//
// A failure after step 1 abandons the sequence mid-way and re-throws;
// in particular a failure between 3 and 5 can leave the data present
// in both locations. That window is accepted: the next successful
// migration or delete cleans it up, and no user data is lost.
func (m *Manager) ChangeStorageMode(ctx context.Context, workspaceID string, newMode domain.StorageMode) error {
	ws, err := m.local.GetWorkspace(ctx, m.userID, workspaceID)
	if err != nil {
		return err
	}
	if ws.StorageMode == newMode {
		return nil
	}

	src, err := m.storeFor(ws.StorageMode)
	if err != nil {
		return err
	}
	dst, err := m.storeFor(newMode)
	if err != nil {
		return err
	}

	// Step 1: access check, the moral equivalent of requesting the
	// extra permission the destination needs.
	if p, ok := dst.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("destination store unavailable, mode unchanged: %w", err)
		}
	}

	scope := m.scope(workspaceID)

	// Step 2: fresh read from the source of truth.
	groups, err := src.Load(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to load from %s store: %w", ws.StorageMode, err)
	}

	// Step 3.
	if err := dst.Save(ctx, scope, groups); err != nil {
		return fmt.Errorf("failed to save to %s store: %w", newMode, err)
	}

	// Step 4.
	if err := src.Delete(ctx, scope); err != nil {
		return fmt.Errorf("saved to %s store but failed to delete from %s store: %w",
			newMode, ws.StorageMode, err)
	}

	// Step 5.
	if err := m.local.SetStorageMode(ctx, m.userID, workspaceID, newMode); err != nil {
		return fmt.Errorf("data migrated but failed to persist mode flag: %w", err)
	}

	m.logger.Info("storage mode changed",
		logger.String("workspace", workspaceID),
		logger.String("from", string(ws.StorageMode)),
		logger.String("to", string(newMode)),
		logger.Int("groups", len(groups)))

	// Step 6.
	m.broadcast(ctx, syncbus.NewSignal(syncbus.TypeModeChanged, m.userID, workspaceID, string(newMode)))
	return nil
}
