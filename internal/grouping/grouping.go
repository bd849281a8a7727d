// Package grouping organizes a flat bookmark list into labeled groups
// with an LLM, falling back to a single default group whenever the
// model cannot be used or trusted.
package grouping

import (
	"encoding/json"
	"strings"
)

// DefaultGroupName is the single group every fallback path produces.
const DefaultGroupName = "My Bookmarks"

// MinItems is the batch size below which calling the model is not
// worth it and the fallback is returned directly.
const MinItems = 3

// Item is one bookmark to be grouped, in the exchange shape.
type Item struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResultGroup is one labeled group of the grouping response.
type ResultGroup struct {
	GroupName string `json:"groupName"`
	Bookmarks []Item `json:"bookmarks"`
}

// Fallback puts every item into one default group.
func Fallback(items []Item) []ResultGroup {
	return []ResultGroup{{GroupName: DefaultGroupName, Bookmarks: items}}
}

// parseReply extracts the grouped result from a model reply. Models
// habitually wrap JSON in code fences; strip them before decoding. A
// reply that loses items is rejected.
func parseReply(reply string, items []Item) ([]ResultGroup, bool) {
	var groups []ResultGroup
	if err := json.Unmarshal([]byte(stripFences(reply)), &groups); err != nil {
		return nil, false
	}
	if len(groups) == 0 {
		return nil, false
	}

	// Every input URL must come back at least once; a repeated URL must
	// not mask a lost one.
	missing := make(map[string]struct{}, len(items))
	for _, it := range items {
		missing[it.URL] = struct{}{}
	}
	for _, g := range groups {
		if g.GroupName == "" {
			return nil, false
		}
		for _, b := range g.Bookmarks {
			delete(missing, b.URL)
		}
	}
	if len(missing) > 0 {
		return nil, false
	}
	return groups, true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
