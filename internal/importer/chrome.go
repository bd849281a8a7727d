package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tabvault/tabvault/internal/domain"
)

// chromeFile mirrors the on-disk "Bookmarks" file Chrome keeps in its
// profile directory.
type chromeFile struct {
	Roots map[string]chromeNode `json:"roots"`
}

type chromeNode struct {
	Type     string       `json:"type"` // "folder" or "url"
	Name     string       `json:"name"`
	URL      string       `json:"url"`
	Children []chromeNode `json:"children"`
}

// chromeRootOrder fixes the traversal order of the well-known roots.
// Unknown roots follow, sorted by key.
var chromeRootOrder = []string{"bookmark_bar", "other", "synced"}

// ReadChrome parses Chrome's Bookmarks JSON into groups. Every folder
// becomes a group (nested folders are flattened into their own groups);
// url nodes sitting directly under a root land in a group named after
// that root.
func ReadChrome(r io.Reader) ([]domain.Group, error) {
	var file chromeFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse Chrome bookmarks file: %w", err)
	}

	var groups []domain.Group
	for _, key := range orderedRoots(file.Roots) {
		root := file.Roots[key]
		name := root.Name
		if name == "" {
			name = "Imported"
		}
		groups = walkChromeFolder(groups, name, root.Children)
	}
	return groups, nil
}

// ReadChromeFile reads Chrome's Bookmarks file from disk.
func ReadChromeFile(path string) ([]domain.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Chrome bookmarks file: %w", err)
	}
	defer f.Close()
	return ReadChrome(f)
}

func orderedRoots(roots map[string]chromeNode) []string {
	keys := make([]string, 0, len(roots))
	seen := make(map[string]bool, len(roots))
	for _, k := range chromeRootOrder {
		if _, ok := roots[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(roots))
	for k := range roots {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// walkChromeFolder collects the url children of one folder level into a
// group named groupName, then recurses into sub-folders. Levels with no
// url children produce no group.
func walkChromeFolder(groups []domain.Group, groupName string, children []chromeNode) []domain.Group {
	var bookmarks []domain.Bookmark
	for _, c := range children {
		if c.Type == "url" && c.URL != "" {
			if b, err := domain.NewBookmark(c.Name, c.URL); err == nil {
				bookmarks = append(bookmarks, b)
			}
		}
	}
	if len(bookmarks) > 0 {
		g, err := domain.NewGroup(groupName)
		if err == nil {
			g.Bookmarks = bookmarks
			groups = append(groups, g)
		}
	}

	for _, c := range children {
		if c.Type == "folder" {
			name := c.Name
			if name == "" {
				name = "Imported"
			}
			groups = walkChromeFolder(groups, name, c.Children)
		}
	}
	return groups
}
