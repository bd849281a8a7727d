package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
)

// DefaultChunkSize bounds how many bookmarks a single persisted write
// may add to the destination.
const DefaultChunkSize = 50

// Options tune a transfer.
type Options struct {
	// DedupeByURL skips source items whose URL already exists anywhere
	// at the destination.
	DedupeByURL bool
	// ChunkSize caps the number of bookmarks added per destination
	// write. Zero means DefaultChunkSize.
	ChunkSize int
	// Move removes source items after the destination write of their
	// chunk succeeds.
	Move bool
}

// Result reports what a transfer did, for UI feedback.
type Result struct {
	Added   int
	Skipped int
}

// Engine performs cross-workspace transfers of a bookmark list, a
// group, or a whole workspace. A chunk is atomic relative to its own
// write; a failure between chunks surfaces as an error after partial
// progress and is not retried.
type Engine struct {
	logger logger.Logger
}

// New creates a transfer engine.
func New(log logger.Logger) *Engine {
	return &Engine{logger: log}
}

// item is one bookmark in flight, tagged with its destination group.
type item struct {
	bm        domain.Bookmark
	destGroup string // group name at destination ("" = use destGroupID)
	destID    string // explicit destination group ID
}

// CopyWorkspace transfers every bookmark of the source workspace,
// preserving group names at the destination.
func (e *Engine) CopyWorkspace(ctx context.Context, src store.Store, from store.Scope, dst store.Store, to store.Scope, opts Options) (Result, error) {
	srcGroups, err := src.Load(ctx, from)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load source workspace: %w", err)
	}

	var items []item
	for _, g := range srcGroups {
		for _, b := range g.Bookmarks {
			items = append(items, item{bm: b, destGroup: g.GroupName})
		}
	}
	return e.run(ctx, src, from, srcGroups, dst, to, items, opts)
}

// CopyGroup transfers a single group's bookmarks into a same-named
// group at the destination (created if missing).
func (e *Engine) CopyGroup(ctx context.Context, src store.Store, from store.Scope, groupID string, dst store.Store, to store.Scope, opts Options) (Result, error) {
	srcGroups, err := src.Load(ctx, from)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load source workspace: %w", err)
	}
	gi := domain.FindGroup(srcGroups, groupID)
	if gi < 0 {
		return Result{}, fmt.Errorf("copy group: %w", domain.ErrGroupNotFound)
	}

	var items []item
	for _, b := range srcGroups[gi].Bookmarks {
		items = append(items, item{bm: b, destGroup: srcGroups[gi].GroupName})
	}
	return e.run(ctx, src, from, srcGroups, dst, to, items, opts)
}

// CopyBookmarks transfers an explicit bookmark-id list into one
// destination group. An empty toGroupID targets the placeholder.
func (e *Engine) CopyBookmarks(ctx context.Context, src store.Store, from store.Scope, bookmarkIDs []string, dst store.Store, to store.Scope, toGroupID string, opts Options) (Result, error) {
	srcGroups, err := src.Load(ctx, from)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load source workspace: %w", err)
	}

	var items []item
	for _, id := range bookmarkIDs {
		gi, bi := domain.FindBookmark(srcGroups, id)
		if gi < 0 {
			return Result{}, fmt.Errorf("copy bookmarks: %s: %w", id, domain.ErrBookmarkNotFound)
		}
		it := item{bm: srcGroups[gi].Bookmarks[bi], destID: toGroupID}
		if toGroupID == "" {
			it.destGroup = domain.PlaceholderName
		}
		items = append(items, it)
	}
	return e.run(ctx, src, from, srcGroups, dst, to, items, opts)
}

// run iterates items in order, skipping URL duplicates when asked, and
// flushes appends to the destination in fixed-size chunks. On move,
// each chunk's source items are removed only after the destination
// write for that chunk succeeded.
func (e *Engine) run(ctx context.Context, src store.Store, from store.Scope, srcGroups []domain.Group, dst store.Store, to store.Scope, items []item, opts Options) (Result, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	dstGroups, err := dst.Load(ctx, to)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load destination workspace: %w", err)
	}
	dstGroups = domain.Normalize(dstGroups)

	seen := domain.FlattenURLs(dstGroups)
	srcGroups = domain.CloneGroups(srcGroups)

	var res Result
	var chunk []item

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		for _, it := range chunk {
			dstGroups = appendAt(dstGroups, it)
		}
		if err := dst.Save(ctx, to, dstGroups); err != nil {
			return fmt.Errorf("failed to write chunk to destination: %w", err)
		}
		res.Added += len(chunk)

		if opts.Move {
			for _, it := range chunk {
				srcGroups = removeBookmark(srcGroups, it.bm.ID)
			}
			if err := src.Save(ctx, from, srcGroups); err != nil {
				return fmt.Errorf("chunk written to destination but failed to update source: %w", err)
			}
		}
		chunk = chunk[:0]
		return nil
	}

	for _, it := range items {
		if opts.DedupeByURL {
			if _, dup := seen[it.bm.URL]; dup {
				res.Skipped++
				continue
			}
		}
		seen[it.bm.URL] = struct{}{}
		chunk = append(chunk, it)
		if len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	e.logger.Info("transfer completed",
		logger.String("from", from.Key()),
		logger.String("to", to.Key()),
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

// appendAt places a copied bookmark (fresh ID) into its destination
// group, creating a named group before the placeholder when needed.
func appendAt(groups []domain.Group, it item) []domain.Group {
	cp := it.bm
	cp.ID = uuid.NewString()

	if it.destID != "" {
		if gi := domain.FindGroup(groups, it.destID); gi >= 0 {
			groups[gi].Bookmarks = append(groups[gi].Bookmarks, cp)
			return groups
		}
	}

	name := it.destGroup
	if name == "" {
		name = domain.PlaceholderName
	}
	for gi := range groups {
		if groups[gi].GroupName == name {
			groups[gi].Bookmarks = append(groups[gi].Bookmarks, cp)
			return groups
		}
	}

	g := domain.Group{ID: uuid.NewString(), GroupName: name, Bookmarks: []domain.Bookmark{cp}}
	return domain.InsertImported(groups, []domain.Group{g})
}

func removeBookmark(groups []domain.Group, bookmarkID string) []domain.Group {
	gi, bi := domain.FindBookmark(groups, bookmarkID)
	if gi < 0 {
		return groups
	}
	groups[gi].Bookmarks = append(groups[gi].Bookmarks[:bi], groups[gi].Bookmarks[bi+1:]...)
	return groups
}
