package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tabvault/tabvault/internal/domain"
)

// ErrInvalidFile is the user-facing error for files that do not parse
// as the exchange format. Raw json errors are never surfaced.
var ErrInvalidFile = errors.New("file is not a valid bookmark export (expected a JSON array of groups)")

// fileGroup is the exchange format: [{groupName, bookmarks: [{name, url}]}].
type fileGroup struct {
	GroupName string         `json:"groupName"`
	Bookmarks []fileBookmark `json:"bookmarks"`
}

type fileBookmark struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ReadJSON parses the exchange format into groups with fresh IDs.
// Entries without a URL are dropped; a group without a name becomes
// "Imported".
func ReadJSON(r io.Reader) ([]domain.Group, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var raw []fileGroup
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidFile
	}

	groups := make([]domain.Group, 0, len(raw))
	for _, fg := range raw {
		name := fg.GroupName
		if name == "" {
			name = "Imported"
		}
		g, err := domain.NewGroup(name)
		if err != nil {
			return nil, err
		}
		for _, fb := range fg.Bookmarks {
			if fb.URL == "" {
				continue
			}
			b, err := domain.NewBookmark(fb.Name, fb.URL)
			if err != nil {
				continue
			}
			g.Bookmarks = append(g.Bookmarks, b)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ReadJSONFile reads the exchange format from disk.
func ReadJSONFile(path string) ([]domain.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
