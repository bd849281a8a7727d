package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderName is the sentinel group name for the "empty" landing
// group. At most one group per workspace carries it, and it is always
// kept last in display order. It is a UI affordance, not data: new
// content lands there until the user names a real group.
const PlaceholderName = "__EMPTY__"

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrEmptyURL         = errors.New("url must not be empty")
)

// Bookmark is a single saved URL.
//
// ID is assigned at creation and never reused. Name may be renamed in
// place; URL is immutable after creation. A bookmark is owned by
// exactly one group at a time.
type Bookmark struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Group is the primary organizational unit: a named, ordered list of
// bookmarks.
type Group struct {
	ID        string     `json:"id"`
	GroupName string     `json:"groupName"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewBookmark creates a bookmark with a fresh ID.
func NewBookmark(name, url string) (Bookmark, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if url == "" {
		return Bookmark{}, ErrEmptyURL
	}
	if name == "" {
		// Fall back to the URL so the entry stays visible.
		name = url
	}
	return Bookmark{ID: uuid.NewString(), Name: name, URL: url}, nil
}

// NewGroup creates an empty group with a fresh ID.
func NewGroup(name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, ErrEmptyName
	}
	return Group{ID: uuid.NewString(), GroupName: name, Bookmarks: []Bookmark{}}, nil
}

// NewPlaceholder creates the sentinel landing group.
func NewPlaceholder() Group {
	return Group{ID: uuid.NewString(), GroupName: PlaceholderName, Bookmarks: []Bookmark{}}
}

// IsPlaceholder reports whether g carries the sentinel name.
func (g Group) IsPlaceholder() bool {
	return g.GroupName == PlaceholderName
}

// Clone returns a deep copy of g.
func (g Group) Clone() Group {
	out := g
	out.Bookmarks = make([]Bookmark, len(g.Bookmarks))
	copy(out.Bookmarks, g.Bookmarks)
	return out
}

// CloneGroups returns a deep copy of a group list. Transforms operate
// on copies so callers keep their pre-transform state on error.
func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}

// FlattenURLs returns the set of all URLs present in the group list.
func FlattenURLs(groups []Group) map[string]struct{} {
	urls := make(map[string]struct{})
	for _, g := range groups {
		for _, b := range g.Bookmarks {
			urls[b.URL] = struct{}{}
		}
	}
	return urls
}

// CountBookmarks returns the total number of bookmarks across groups.
func CountBookmarks(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Bookmarks)
	}
	return n
}

// FindGroup returns the index of the group with the given ID, or -1.
func FindGroup(groups []Group, groupID string) int {
	for i := range groups {
		if groups[i].ID == groupID {
			return i
		}
	}
	return -1
}

// FindBookmark returns the (group index, bookmark index) of the
// bookmark with the given ID, or (-1, -1).
func FindBookmark(groups []Group, bookmarkID string) (int, int) {
	for gi := range groups {
		for bi := range groups[gi].Bookmarks {
			if groups[gi].Bookmarks[bi].ID == bookmarkID {
				return gi, bi
			}
		}
	}
	return -1, -1
}
