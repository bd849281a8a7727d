package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/importer"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/manager"
	"github.com/tabvault/tabvault/internal/store"
	"github.com/tabvault/tabvault/internal/store/sqlite"
	syncbus "github.com/tabvault/tabvault/internal/sync"
	"github.com/tabvault/tabvault/internal/transfer"
)

// TestWorkspaceLifecycle exercises the full client path against a real
// sqlite file: create a workspace, build content through the manager,
// import an export, copy with dedupe into a second workspace, migrate
// to the remote adapter and back out again.
func TestWorkspaceLifecycle(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	local, err := sqlite.New(filepath.Join(t.TempDir(), "tabvault.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer local.Close()

	remote := store.NewMemory()
	bus := syncbus.NewMemoryBus()
	var signals []syncbus.Signal
	_, _ = bus.Subscribe(func(s syncbus.Signal) { signals = append(signals, s) })

	mgr := manager.New("alice", local, remote, bus, log)

	// Build a workspace through the manager.
	ws, err := mgr.CreateWorkspace(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateWorkspace failed: %v", err)
	}
	dev, err := mgr.AddGroup(ctx, ws.ID, "Dev")
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	if _, err := mgr.AddBookmark(ctx, ws.ID, dev.ID, "Go", "https://go.dev"); err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if _, err := mgr.AddBookmark(ctx, ws.ID, "", "Inbox item", "https://example.com/read-later"); err != nil {
		t.Fatalf("AddBookmark into placeholder failed: %v", err)
	}

	// Import splices before the placeholder.
	imported, err := importer.ReadJSON(strings.NewReader(
		`[{"groupName":"News","bookmarks":[{"name":"HN","url":"https://news.ycombinator.com"},{"name":"Go dup","url":"https://go.dev"}]}]`))
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	groups, err := mgr.Import(ctx, ws.ID, imported)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if got := len(groups); got != 3 {
		t.Fatalf("groups after import = %d, want 3 (Dev, News, placeholder)", got)
	}
	if !groups[len(groups)-1].IsPlaceholder() {
		t.Error("placeholder is not last after import")
	}

	// Copy with dedupe into a fresh workspace: the duplicated go.dev
	// URL must be skipped once.
	archive, err := mgr.CreateWorkspace(ctx, "Archive")
	if err != nil {
		t.Fatalf("CreateWorkspace failed: %v", err)
	}
	srcStore, from, err := mgr.Resolve(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Resolve source failed: %v", err)
	}
	dstStore, to, err := mgr.Resolve(ctx, archive.ID)
	if err != nil {
		t.Fatalf("Resolve destination failed: %v", err)
	}
	res, err := transfer.New(log).CopyWorkspace(ctx, srcStore, from, dstStore, to, transfer.Options{DedupeByURL: true})
	if err != nil {
		t.Fatalf("CopyWorkspace failed: %v", err)
	}
	if res.Added != 3 || res.Skipped != 1 {
		t.Errorf("copy result = %+v, want Added=3 Skipped=1", res)
	}

	// Migrate the original workspace to the remote adapter: the data
	// moves, it does not fork.
	if err := mgr.ChangeStorageMode(ctx, ws.ID, domain.StorageModeRemote); err != nil {
		t.Fatalf("ChangeStorageMode to remote failed: %v", err)
	}
	localGroups, err := local.Load(ctx, from)
	if err != nil {
		t.Fatalf("local load after migration failed: %v", err)
	}
	if len(localGroups) != 0 {
		t.Errorf("local store still holds %d groups after migration", len(localGroups))
	}
	remoteGroups, err := mgr.Groups(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Groups through remote adapter failed: %v", err)
	}
	if domain.CountBookmarks(remoteGroups) != 4 {
		t.Errorf("remote bookmarks = %d, want 4", domain.CountBookmarks(remoteGroups))
	}

	// Mutations keep flowing through the new adapter.
	if _, err := mgr.AddBookmark(ctx, ws.ID, "", "Remote add", "https://remote.example"); err != nil {
		t.Fatalf("AddBookmark in remote mode failed: %v", err)
	}

	// And back to local.
	if err := mgr.ChangeStorageMode(ctx, ws.ID, domain.StorageModeLocal); err != nil {
		t.Fatalf("ChangeStorageMode to local failed: %v", err)
	}
	if remote.Len() != 0 {
		t.Errorf("remote store still holds %d scopes after migrating back", remote.Len())
	}
	back, err := mgr.Groups(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Groups after migrating back failed: %v", err)
	}
	if domain.CountBookmarks(back) != 5 {
		t.Errorf("bookmarks after round trip = %d, want 5", domain.CountBookmarks(back))
	}

	// Every mutation broadcast; both mode changes are in the stream.
	var modeChanges int
	for _, s := range signals {
		if s.Type == syncbus.TypeModeChanged {
			modeChanges++
		}
	}
	if modeChanges != 2 {
		t.Errorf("mode_changed signals = %d, want 2", modeChanges)
	}
}

// TestSelectionFollowsGuard verifies that the last-selected group
// survives reopening the store and that stale selection signals are
// dropped.
func TestSelectionFollowsGuard(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	path := filepath.Join(t.TempDir(), "tabvault.db")
	local, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}

	mgr := manager.New("alice", local, nil, nil, log)
	ws, err := mgr.CreateWorkspace(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateWorkspace failed: %v", err)
	}
	g, err := mgr.AddGroup(ctx, ws.ID, "Dev")
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	if err := mgr.SelectGroup(ctx, ws.ID, g.ID); err != nil {
		t.Fatalf("SelectGroup failed: %v", err)
	}
	if err := local.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	mgr = manager.New("alice", reopened, nil, nil, log)
	selected, err := mgr.SelectedGroup(ctx, ws.ID)
	if err != nil {
		t.Fatalf("SelectedGroup failed: %v", err)
	}
	if selected != g.ID {
		t.Errorf("selected = %q, want %q after reopen", selected, g.ID)
	}

	// A consumer applying signals out of order keeps the newest one.
	guard := syncbus.NewGuard()
	var applied []string
	h := syncbus.Guarded(guard, func(s syncbus.Signal) { applied = append(applied, s.Value) })

	newer := syncbus.NewSignal(syncbus.TypeSelectedGroup, "alice", ws.ID, "g2")
	older := newer
	older.Value = "g1"
	older.Timestamp = newer.Timestamp - 1

	h(newer)
	h(older)
	if len(applied) != 1 || applied[0] != "g2" {
		t.Errorf("applied = %v, want only g2", applied)
	}
}
