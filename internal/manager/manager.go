package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
	"github.com/tabvault/tabvault/internal/store/sqlite"
	syncbus "github.com/tabvault/tabvault/internal/sync"
)

// ErrRemoteNotConfigured is returned when a workspace is in remote
// mode but no remote adapter was wired (missing API URL or token).
var ErrRemoteNotConfigured = errors.New("remote storage not configured")

// Manager is the mutation facade. Every state-changing operation is
// "load current groups, apply a pure transform, persist through the
// active adapter", followed by a best-effort refresh broadcast so
// sibling clients reload their view. There is no automatic rollback:
// if the persist fails the operation rejects and the caller keeps its
// pre-failure state (transforms never mutate their input).
type Manager struct {
	userID string
	local  *sqlite.Storage
	remote store.Store
	bus    syncbus.Bus
	logger logger.Logger
}

// New creates a manager for one user. remote may be nil when the
// remote API is not configured; bus may be nil to disable broadcasts.
func New(userID string, local *sqlite.Storage, remote store.Store, bus syncbus.Bus, log logger.Logger) *Manager {
	return &Manager{
		userID: userID,
		local:  local,
		remote: remote,
		bus:    bus,
		logger: log,
	}
}

// Local exposes the on-device storage (registry, watcher path).
func (m *Manager) Local() *sqlite.Storage { return m.local }

// UserID returns the user this manager operates for.
func (m *Manager) UserID() string { return m.userID }

func (m *Manager) scope(workspaceID string) store.Scope {
	return store.Scope{UserID: m.userID, WorkspaceID: workspaceID}
}

// storeFor resolves the active adapter for a workspace's mode flag.
func (m *Manager) storeFor(mode domain.StorageMode) (store.Store, error) {
	switch mode {
	case domain.StorageModeRemote:
		if m.remote == nil {
			return nil, ErrRemoteNotConfigured
		}
		return m.remote, nil
	default:
		return m.local, nil
	}
}

func (m *Manager) activeStore(ctx context.Context, workspaceID string) (store.Store, error) {
	ws, err := m.local.GetWorkspace(ctx, m.userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return m.storeFor(ws.StorageMode)
}

// Resolve returns the active adapter and scope for a workspace, for
// callers that operate on raw stores (transfer, export).
func (m *Manager) Resolve(ctx context.Context, workspaceID string) (store.Store, store.Scope, error) {
	st, err := m.activeStore(ctx, workspaceID)
	if err != nil {
		return nil, store.Scope{}, err
	}
	return st, m.scope(workspaceID), nil
}

// Groups loads the current group list of a workspace through its
// active adapter, normalized for display.
func (m *Manager) Groups(ctx context.Context, workspaceID string) ([]domain.Group, error) {
	st, err := m.activeStore(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	groups, err := st.Load(ctx, m.scope(workspaceID))
	if err != nil {
		return nil, err
	}
	return domain.Normalize(groups), nil
}

// transform computes the next group list from the current one.
type transform func(current []domain.Group) ([]domain.Group, error)

// apply runs the load-transform-persist cycle and broadcasts a
// GroupsChanged signal on success.
func (m *Manager) apply(ctx context.Context, workspaceID string, fn transform) ([]domain.Group, error) {
	st, err := m.activeStore(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	scope := m.scope(workspaceID)

	current, err := st.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	next, err := fn(domain.Normalize(current))
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, scope, next); err != nil {
		return nil, err
	}

	m.broadcast(ctx, syncbus.NewSignal(syncbus.TypeGroupsChanged, m.userID, workspaceID, ""))
	return next, nil
}

// broadcast publishes a signal, logging instead of failing the
// operation when delivery is unavailable.
func (m *Manager) broadcast(ctx context.Context, s syncbus.Signal) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, s); err != nil {
		m.logger.Warn("failed to broadcast signal",
			logger.String("type", string(s.Type)),
			logger.Error(err))
	}
}

// AddGroup creates a named group before the placeholder.
func (m *Manager) AddGroup(ctx context.Context, workspaceID, name string) (domain.Group, error) {
	var created domain.Group
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		next, g, err := domain.AddGroup(current, name)
		created = g
		return next, err
	})
	return created, err
}

// AddBookmark creates a bookmark in the given group; an empty groupID
// lands it in the placeholder.
func (m *Manager) AddBookmark(ctx context.Context, workspaceID, groupID, name, url string) (domain.Bookmark, error) {
	var created domain.Bookmark
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		next, b, err := domain.AddBookmark(current, groupID, name, url)
		created = b
		return next, err
	})
	return created, err
}

// RenameGroup renames a group.
func (m *Manager) RenameGroup(ctx context.Context, workspaceID, groupID, name string) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.RenameGroup(current, groupID, name)
	})
	return err
}

// RenameBookmark renames a bookmark.
func (m *Manager) RenameBookmark(ctx context.Context, workspaceID, bookmarkID, name string) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.RenameBookmark(current, bookmarkID, name)
	})
	return err
}

// DeleteGroup removes a group and its bookmarks.
func (m *Manager) DeleteGroup(ctx context.Context, workspaceID, groupID string) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.DeleteGroup(current, groupID)
	})
	return err
}

// DeleteBookmark removes a single bookmark.
func (m *Manager) DeleteBookmark(ctx context.Context, workspaceID, bookmarkID string) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.DeleteBookmark(current, bookmarkID)
	})
	return err
}

// ReorderGroup moves a group to a new display position.
func (m *Manager) ReorderGroup(ctx context.Context, workspaceID, groupID string, newIndex int) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.ReorderGroup(current, groupID, newIndex)
	})
	return err
}

// ReorderBookmark moves a bookmark within its group.
func (m *Manager) ReorderBookmark(ctx context.Context, workspaceID, bookmarkID string, newIndex int) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.ReorderBookmark(current, bookmarkID, newIndex)
	})
	return err
}

// MoveBookmark moves a bookmark into another group of the same
// workspace.
func (m *Manager) MoveBookmark(ctx context.Context, workspaceID, bookmarkID, toGroupID string) error {
	_, err := m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.MoveBookmark(current, bookmarkID, toGroupID)
	})
	return err
}

// Import splices pipeline output into the workspace using the shared
// insert rule. Returns the resulting group list.
func (m *Manager) Import(ctx context.Context, workspaceID string, imported []domain.Group) ([]domain.Group, error) {
	if len(imported) == 0 {
		return m.Groups(ctx, workspaceID)
	}
	return m.apply(ctx, workspaceID, func(current []domain.Group) ([]domain.Group, error) {
		return domain.InsertImported(current, imported), nil
	})
}

// CreateWorkspace registers a new workspace in local mode.
func (m *Manager) CreateWorkspace(ctx context.Context, name string) (domain.Workspace, error) {
	ws, err := domain.NewWorkspace(name)
	if err != nil {
		return domain.Workspace{}, err
	}
	if err := m.local.PutWorkspace(ctx, m.userID, ws); err != nil {
		return domain.Workspace{}, err
	}
	return ws, nil
}

// ListWorkspaces returns the user's workspace registry.
func (m *Manager) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	return m.local.ListWorkspaces(ctx, m.userID)
}

// DeleteWorkspace removes a workspace: scope data first (through the
// active adapter), then the registry record.
func (m *Manager) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	st, err := m.activeStore(ctx, workspaceID)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, m.scope(workspaceID)); err != nil {
		return fmt.Errorf("failed to delete workspace data: %w", err)
	}
	return m.local.DeleteWorkspace(ctx, m.userID, workspaceID)
}

// SelectGroup records the last-selected group and broadcasts it so
// every open view converges on the same selection.
func (m *Manager) SelectGroup(ctx context.Context, workspaceID, groupID string) error {
	if err := m.local.SetSelectedGroup(ctx, m.scope(workspaceID), groupID); err != nil {
		return err
	}
	m.broadcast(ctx, syncbus.NewSignal(syncbus.TypeSelectedGroup, m.userID, workspaceID, groupID))
	return nil
}

// SelectedGroup returns the last-selected group for a workspace.
func (m *Manager) SelectedGroup(ctx context.Context, workspaceID string) (string, error) {
	return m.local.SelectedGroup(ctx, m.scope(workspaceID))
}
