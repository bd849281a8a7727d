package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
)

var testLog = logger.New("error", false)

func seed(t *testing.T, st store.Store, scope store.Scope, groups ...domain.Group) []domain.Group {
	t.Helper()
	normalized := domain.Normalize(groups)
	if err := st.Save(context.Background(), scope, normalized); err != nil {
		t.Fatalf("seed Save failed: %v", err)
	}
	return normalized
}

func mkGroup(t *testing.T, name string, urls ...string) domain.Group {
	t.Helper()
	g, err := domain.NewGroup(name)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range urls {
		b, err := domain.NewBookmark(u, u)
		if err != nil {
			t.Fatal(err)
		}
		g.Bookmarks = append(g.Bookmarks, b)
	}
	return g
}

func TestCopyWorkspacePreservesGroupNames(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work", "https://a.com", "https://b.com"), mkGroup(t, "Play", "https://c.com"))

	res, err := New(testLog).CopyWorkspace(context.Background(), src, from, dst, to, Options{})
	if err != nil {
		t.Fatalf("CopyWorkspace failed: %v", err)
	}
	if res.Added != 3 || res.Skipped != 0 {
		t.Errorf("Result = %+v, want Added=3 Skipped=0", res)
	}

	got, _ := dst.Load(context.Background(), to)
	names := map[string]int{}
	for _, g := range got {
		names[g.GroupName] = len(g.Bookmarks)
	}
	if names["Work"] != 2 || names["Play"] != 1 {
		t.Errorf("destination groups = %v", names)
	}
	if !got[len(got)-1].IsPlaceholder() {
		t.Error("destination placeholder must be last")
	}
}

func TestCopyDedupeByURL(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	srcGroups := seed(t, src, from, mkGroup(t, "Work", "https://dup.com"))
	seed(t, dst, to, mkGroup(t, "Existing", "https://dup.com"))

	res, err := New(testLog).CopyBookmarks(context.Background(), src, from,
		[]string{srcGroups[0].Bookmarks[0].ID}, dst, to, "", Options{DedupeByURL: true})
	if err != nil {
		t.Fatalf("CopyBookmarks failed: %v", err)
	}
	if res.Added != 0 || res.Skipped != 1 {
		t.Errorf("Result = %+v, want Added=0 Skipped=1", res)
	}

	got, _ := dst.Load(context.Background(), to)
	count := 0
	for _, g := range got {
		for _, b := range g.Bookmarks {
			if b.URL == "https://dup.com" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("destination has %d copies of https://dup.com, want 1", count)
	}
}

func TestCopyWithoutDedupeAppends(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work", "https://dup.com"))
	seed(t, dst, to, mkGroup(t, "Work", "https://dup.com"))

	res, err := New(testLog).CopyWorkspace(context.Background(), src, from, dst, to, Options{})
	if err != nil {
		t.Fatalf("CopyWorkspace failed: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("Result = %+v, want Added=1", res)
	}
}

func TestCountsSumToConsideredItems(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work", "https://a.com", "https://b.com", "https://c.com"))
	seed(t, dst, to, mkGroup(t, "Work", "https://b.com"))

	res, err := New(testLog).CopyWorkspace(context.Background(), src, from, dst, to, Options{DedupeByURL: true})
	if err != nil {
		t.Fatalf("CopyWorkspace failed: %v", err)
	}
	if res.Added+res.Skipped != 3 {
		t.Errorf("Added+Skipped = %d, want 3 (%+v)", res.Added+res.Skipped, res)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}

func TestMoveRemovesFromSource(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	srcGroups := seed(t, src, from, mkGroup(t, "Work", "https://a.com", "https://b.com"))

	res, err := New(testLog).CopyGroup(context.Background(), src, from, srcGroups[0].ID, dst, to, Options{Move: true})
	if err != nil {
		t.Fatalf("CopyGroup move failed: %v", err)
	}
	if res.Added != 2 {
		t.Errorf("Result = %+v, want Added=2", res)
	}

	after, _ := src.Load(context.Background(), from)
	if domain.CountBookmarks(after) != 0 {
		t.Errorf("moved items still in source: %d", domain.CountBookmarks(after))
	}
	got, _ := dst.Load(context.Background(), to)
	if domain.CountBookmarks(got) != 2 {
		t.Errorf("destination has %d bookmarks, want 2", domain.CountBookmarks(got))
	}
}

func TestChunkedWrites(t *testing.T) {
	src := store.NewMemory()
	dst := &countingStore{Memory: store.NewMemory()}
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work",
		"https://1.com", "https://2.com", "https://3.com", "https://4.com", "https://5.com"))

	res, err := New(testLog).CopyWorkspace(context.Background(), src, from, dst, to, Options{ChunkSize: 2})
	if err != nil {
		t.Fatalf("CopyWorkspace failed: %v", err)
	}
	if res.Added != 5 {
		t.Errorf("Added = %d, want 5", res.Added)
	}
	// 5 items at chunk size 2 -> 3 destination writes.
	if dst.saves != 3 {
		t.Errorf("destination writes = %d, want 3", dst.saves)
	}
}

func TestFailureBetweenChunksSurfacesPartialProgress(t *testing.T) {
	src := store.NewMemory()
	dst := &countingStore{Memory: store.NewMemory(), failAfter: 1}
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work",
		"https://1.com", "https://2.com", "https://3.com", "https://4.com"))

	res, err := New(testLog).CopyWorkspace(context.Background(), src, from, dst, to, Options{ChunkSize: 2, Move: true})
	if err == nil {
		t.Fatal("expected error after failing chunk")
	}
	// First chunk landed and its items left the source; the rest stayed.
	if res.Added != 2 {
		t.Errorf("Added = %d, want 2 (first chunk only)", res.Added)
	}
	after, _ := src.Load(context.Background(), from)
	if domain.CountBookmarks(after) != 2 {
		t.Errorf("source has %d bookmarks, want 2 remaining", domain.CountBookmarks(after))
	}
}

func TestCopyBookmarksIntoExplicitGroup(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	srcGroups := seed(t, src, from, mkGroup(t, "Work", "https://a.com"))
	dstGroups := seed(t, dst, to, mkGroup(t, "Target"))

	res, err := New(testLog).CopyBookmarks(context.Background(), src, from,
		[]string{srcGroups[0].Bookmarks[0].ID}, dst, to, dstGroups[0].ID, Options{})
	if err != nil {
		t.Fatalf("CopyBookmarks failed: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("Added = %d, want 1", res.Added)
	}

	got, _ := dst.Load(context.Background(), to)
	gi := domain.FindGroup(got, dstGroups[0].ID)
	if gi < 0 || len(got[gi].Bookmarks) != 1 {
		t.Errorf("bookmark not in explicit target group: %+v", got)
	}
	// Copies get fresh IDs; the source keeps its own.
	if got[gi].Bookmarks[0].ID == srcGroups[0].Bookmarks[0].ID {
		t.Error("copied bookmark must get a fresh ID")
	}
}

func TestCopyUnknownGroupFails(t *testing.T) {
	src, dst := store.NewMemory(), store.NewMemory()
	from := store.Scope{UserID: "u", WorkspaceID: "a"}
	to := store.Scope{UserID: "u", WorkspaceID: "b"}
	seed(t, src, from, mkGroup(t, "Work"))

	_, err := New(testLog).CopyGroup(context.Background(), src, from, "nope", dst, to, Options{})
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("CopyGroup error = %v, want ErrGroupNotFound", err)
	}
}

// countingStore counts saves and can fail after N of them.
type countingStore struct {
	*store.Memory
	saves     int
	failAfter int // fail on save number failAfter+1 (0 = never)
}

func (c *countingStore) Save(ctx context.Context, scope store.Scope, groups []domain.Group) error {
	if c.failAfter > 0 && c.saves >= c.failAfter {
		return errors.New("write failed")
	}
	c.saves++
	return c.Memory.Save(ctx, scope, groups)
}
