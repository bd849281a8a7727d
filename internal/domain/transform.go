package domain

import "fmt"

// Transforms are pure: each one deep-copies its input, applies the
// mutation, and returns a normalized group list. The caller's slice is
// never modified, so a failed persist leaves the pre-transform state
// intact.

// Normalize enforces the placeholder invariant: exactly one group with
// the sentinel name exists and it is last in display order. Bookmarks
// of surplus placeholder groups are merged into the kept one.
func Normalize(groups []Group) []Group {
	out := make([]Group, 0, len(groups)+1)
	var placeholder *Group
	for _, g := range groups {
		if !g.IsPlaceholder() {
			out = append(out, g)
			continue
		}
		if placeholder == nil {
			kept := g.Clone()
			placeholder = &kept
			continue
		}
		placeholder.Bookmarks = append(placeholder.Bookmarks, g.Bookmarks...)
	}
	if placeholder == nil {
		p := NewPlaceholder()
		placeholder = &p
	}
	return append(out, *placeholder)
}

// AddGroup inserts a new named group before the placeholder.
func AddGroup(groups []Group, name string) ([]Group, Group, error) {
	g, err := NewGroup(name)
	if err != nil {
		return nil, Group{}, err
	}
	out := CloneGroups(groups)
	out = append(out, g)
	return Normalize(out), g, nil
}

// AddBookmark appends a new bookmark to the given group. An empty
// groupID targets the placeholder group.
func AddBookmark(groups []Group, groupID, name, url string) ([]Group, Bookmark, error) {
	b, err := NewBookmark(name, url)
	if err != nil {
		return nil, Bookmark{}, err
	}
	out := Normalize(CloneGroups(groups))
	gi := -1
	if groupID == "" {
		gi = len(out) - 1 // placeholder is last after Normalize
	} else {
		gi = FindGroup(out, groupID)
	}
	if gi < 0 {
		return nil, Bookmark{}, fmt.Errorf("add bookmark: %w", ErrGroupNotFound)
	}
	out[gi].Bookmarks = append(out[gi].Bookmarks, b)
	return out, b, nil
}

// RenameGroup changes a group's display name. Renaming the placeholder
// turns it into a regular group; Normalize recreates the sentinel.
func RenameGroup(groups []Group, groupID, name string) ([]Group, error) {
	g, err := NewGroup(name) // reuse name validation
	if err != nil {
		return nil, err
	}
	out := CloneGroups(groups)
	gi := FindGroup(out, groupID)
	if gi < 0 {
		return nil, fmt.Errorf("rename group: %w", ErrGroupNotFound)
	}
	out[gi].GroupName = g.GroupName
	return Normalize(out), nil
}

// RenameBookmark changes a bookmark's display name in place.
func RenameBookmark(groups []Group, bookmarkID, name string) ([]Group, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	out := CloneGroups(groups)
	gi, bi := FindBookmark(out, bookmarkID)
	if gi < 0 {
		return nil, fmt.Errorf("rename bookmark: %w", ErrBookmarkNotFound)
	}
	out[gi].Bookmarks[bi].Name = name
	return out, nil
}

// DeleteGroup removes a group and all its bookmarks.
func DeleteGroup(groups []Group, groupID string) ([]Group, error) {
	out := CloneGroups(groups)
	gi := FindGroup(out, groupID)
	if gi < 0 {
		return nil, fmt.Errorf("delete group: %w", ErrGroupNotFound)
	}
	out = append(out[:gi], out[gi+1:]...)
	return Normalize(out), nil
}

// DeleteBookmark removes a single bookmark.
func DeleteBookmark(groups []Group, bookmarkID string) ([]Group, error) {
	out := CloneGroups(groups)
	gi, bi := FindBookmark(out, bookmarkID)
	if gi < 0 {
		return nil, fmt.Errorf("delete bookmark: %w", ErrBookmarkNotFound)
	}
	out[gi].Bookmarks = append(out[gi].Bookmarks[:bi], out[gi].Bookmarks[bi+1:]...)
	return out, nil
}

// ReorderGroup moves a group to a new position. The placeholder is
// pinned last regardless of the requested index.
func ReorderGroup(groups []Group, groupID string, newIndex int) ([]Group, error) {
	out := CloneGroups(groups)
	gi := FindGroup(out, groupID)
	if gi < 0 {
		return nil, fmt.Errorf("reorder group: %w", ErrGroupNotFound)
	}
	g := out[gi]
	out = append(out[:gi], out[gi+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(out) {
		newIndex = len(out)
	}
	out = append(out[:newIndex], append([]Group{g}, out[newIndex:]...)...)
	return Normalize(out), nil
}

// ReorderBookmark moves a bookmark to a new position within its group.
func ReorderBookmark(groups []Group, bookmarkID string, newIndex int) ([]Group, error) {
	out := CloneGroups(groups)
	gi, bi := FindBookmark(out, bookmarkID)
	if gi < 0 {
		return nil, fmt.Errorf("reorder bookmark: %w", ErrBookmarkNotFound)
	}
	bms := out[gi].Bookmarks
	b := bms[bi]
	bms = append(bms[:bi], bms[bi+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(bms) {
		newIndex = len(bms)
	}
	out[gi].Bookmarks = append(bms[:newIndex], append([]Bookmark{b}, bms[newIndex:]...)...)
	return out, nil
}

// MoveBookmark transfers a bookmark to the end of another group in the
// same workspace.
func MoveBookmark(groups []Group, bookmarkID, toGroupID string) ([]Group, error) {
	out := CloneGroups(groups)
	gi, bi := FindBookmark(out, bookmarkID)
	if gi < 0 {
		return nil, fmt.Errorf("move bookmark: %w", ErrBookmarkNotFound)
	}
	ti := FindGroup(out, toGroupID)
	if ti < 0 {
		return nil, fmt.Errorf("move bookmark: %w", ErrGroupNotFound)
	}
	b := out[gi].Bookmarks[bi]
	out[gi].Bookmarks = append(out[gi].Bookmarks[:bi], out[gi].Bookmarks[bi+1:]...)
	out[ti].Bookmarks = append(out[ti].Bookmarks, b)
	return out, nil
}

// InsertImported splices imported groups into the current list using
// the one fixed merge rule shared by every import pipeline: new groups
// go immediately before the first placeholder if one exists (otherwise
// they are appended), and afterwards exactly one placeholder exists
// and sits last.
func InsertImported(groups []Group, imported []Group) []Group {
	out := CloneGroups(groups)
	ins := CloneGroups(imported)

	at := len(out)
	for i := range out {
		if out[i].IsPlaceholder() {
			at = i
			break
		}
	}
	out = append(out[:at], append(ins, out[at:]...)...)
	return Normalize(out)
}
