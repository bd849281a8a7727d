package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tabvault.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testGroups(t *testing.T) []domain.Group {
	t.Helper()
	g, err := domain.NewGroup("Work")
	if err != nil {
		t.Fatal(err)
	}
	b, err := domain.NewBookmark("Example", "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	g.Bookmarks = append(g.Bookmarks, b)
	return domain.Normalize([]domain.Group{g})
}

func TestLoadMissingScopeReturnsEmpty(t *testing.T) {
	s := newTestStorage(t)

	groups, err := s.Load(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Load() of missing scope = %d groups, want 0", len(groups))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	scope := store.Scope{UserID: "u1", WorkspaceID: "w1"}
	groups := testGroups(t)

	if err := s.Save(context.Background(), scope, groups); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(context.Background(), scope)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != len(groups) {
		t.Fatalf("Load() = %d groups, want %d", len(loaded), len(groups))
	}
	if loaded[0].GroupName != "Work" || len(loaded[0].Bookmarks) != 1 {
		t.Errorf("Load() round trip mismatch: %+v", loaded[0])
	}
	if loaded[0].Bookmarks[0].URL != "https://example.com" {
		t.Errorf("bookmark URL = %q, want https://example.com", loaded[0].Bookmarks[0].URL)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStorage(t)
	scope := store.Scope{UserID: "u1", WorkspaceID: "w1"}

	if err := s.Save(context.Background(), scope, testGroups(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(context.Background(), scope, []domain.Group{}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := s.Load(context.Background(), scope)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Save() should overwrite, got %d groups want 0", len(loaded))
	}
}

func TestDeleteScope(t *testing.T) {
	s := newTestStorage(t)
	scope := store.Scope{UserID: "u1", WorkspaceID: "w1"}

	if err := s.Save(context.Background(), scope, testGroups(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete(context.Background(), scope); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	loaded, err := s.Load(context.Background(), scope)
	if err != nil {
		t.Fatalf("Load after Delete failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("scope still present after Delete: %d groups", len(loaded))
	}

	// Deleting again is a no-op.
	if err := s.Delete(context.Background(), scope); err != nil {
		t.Errorf("Delete of missing scope should not fail: %v", err)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	s := newTestStorage(t)
	a := store.Scope{UserID: "u1", WorkspaceID: "w1"}
	b := store.Scope{UserID: "u1", WorkspaceID: "w2"}

	if err := s.Save(context.Background(), a, testGroups(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(context.Background(), b)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("scope w2 should be empty, got %d groups", len(loaded))
	}
}

func TestInvalidScopeRejected(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.Load(context.Background(), store.Scope{UserID: "u1"}); err == nil {
		t.Error("Load() with empty workspace should fail")
	}
	if err := s.Save(context.Background(), store.Scope{WorkspaceID: "w1"}, nil); err == nil {
		t.Error("Save() with empty user should fail")
	}
}

func TestWorkspaceRegistry(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ws, err := domain.NewWorkspace("Personal")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PutWorkspace(ctx, "u1", ws); err != nil {
		t.Fatalf("PutWorkspace failed: %v", err)
	}

	got, err := s.GetWorkspace(ctx, "u1", ws.ID)
	if err != nil {
		t.Fatalf("GetWorkspace failed: %v", err)
	}
	if got.Name != "Personal" || got.StorageMode != domain.StorageModeLocal {
		t.Errorf("GetWorkspace() = %+v", got)
	}

	if err := s.SetStorageMode(ctx, "u1", ws.ID, domain.StorageModeRemote); err != nil {
		t.Fatalf("SetStorageMode failed: %v", err)
	}
	got, err = s.GetWorkspace(ctx, "u1", ws.ID)
	if err != nil {
		t.Fatalf("GetWorkspace failed: %v", err)
	}
	if got.StorageMode != domain.StorageModeRemote {
		t.Errorf("storage mode = %v, want remote", got.StorageMode)
	}

	list, err := s.ListWorkspaces(ctx, "u1")
	if err != nil {
		t.Fatalf("ListWorkspaces failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListWorkspaces() = %d, want 1", len(list))
	}

	if err := s.DeleteWorkspace(ctx, "u1", ws.ID); err != nil {
		t.Fatalf("DeleteWorkspace failed: %v", err)
	}
	if _, err := s.GetWorkspace(ctx, "u1", ws.ID); err == nil {
		t.Error("GetWorkspace() after delete should fail")
	}
}

func TestSetStorageModeUnknownWorkspace(t *testing.T) {
	s := newTestStorage(t)
	err := s.SetStorageMode(context.Background(), "u1", "nope", domain.StorageModeRemote)
	if err == nil {
		t.Error("SetStorageMode() on unknown workspace should fail")
	}
}

func TestSelectedGroupRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	scope := store.Scope{UserID: "u1", WorkspaceID: "w1"}

	got, err := s.SelectedGroup(ctx, scope)
	if err != nil {
		t.Fatalf("SelectedGroup failed: %v", err)
	}
	if got != "" {
		t.Errorf("SelectedGroup() before set = %q, want empty", got)
	}

	if err := s.SetSelectedGroup(ctx, scope, "g-42"); err != nil {
		t.Fatalf("SetSelectedGroup failed: %v", err)
	}
	got, err = s.SelectedGroup(ctx, scope)
	if err != nil {
		t.Fatalf("SelectedGroup failed: %v", err)
	}
	if got != "g-42" {
		t.Errorf("SelectedGroup() = %q, want g-42", got)
	}
}
