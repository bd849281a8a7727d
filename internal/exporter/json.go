package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tabvault/tabvault/internal/domain"
)

// fileGroup is the exchange format shared with the JSON importer:
// [{groupName, bookmarks: [{name, url}]}]. IDs are not exported; the
// importer assigns fresh ones.
type fileGroup struct {
	GroupName string         `json:"groupName"`
	Bookmarks []fileBookmark `json:"bookmarks"`
}

type fileBookmark struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// WriteJSON writes groups in the exchange format. The placeholder
// group is skipped when empty; one with content is exported like any
// other so nothing is lost on a round trip.
func WriteJSON(w io.Writer, groups []domain.Group) error {
	out := make([]fileGroup, 0, len(groups))
	for _, g := range groups {
		if g.IsPlaceholder() && len(g.Bookmarks) == 0 {
			continue
		}
		fg := fileGroup{GroupName: g.GroupName, Bookmarks: make([]fileBookmark, 0, len(g.Bookmarks))}
		for _, b := range g.Bookmarks {
			fg.Bookmarks = append(fg.Bookmarks, fileBookmark{Name: b.Name, URL: b.URL})
		}
		out = append(out, fg)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteJSONFile writes the exchange format to disk.
func WriteJSONFile(path string, groups []domain.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteJSON(f, groups); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
