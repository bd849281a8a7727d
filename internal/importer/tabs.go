package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tabvault/tabvault/internal/domain"
)

const (
	// DefaultDevToolsURL is where a browser started with
	// --remote-debugging-port=9222 exposes its target list.
	DefaultDevToolsURL = "http://127.0.0.1:9222"

	// TabsGroupName is the group open tabs are collected into.
	TabsGroupName = "Open Tabs"

	tabsTimeout = 5 * time.Second
)

// devtoolsTarget is one entry of the DevTools /json target list.
type devtoolsTarget struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ReadTabs queries the browser DevTools endpoint and turns the open
// pages into a single group. Internal browser pages (chrome://,
// devtools://, about:) are skipped. A browser with no regular pages
// open yields an empty list.
func ReadTabs(ctx context.Context, client *http.Client, baseURL string) ([]domain.Group, error) {
	if client == nil {
		client = &http.Client{Timeout: tabsTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultDevToolsURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tabs request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browser debugging endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("browser debugging endpoint returned status %d", resp.StatusCode)
	}

	var targets []devtoolsTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("failed to parse tab list: %w", err)
	}

	group, err := domain.NewGroup(TabsGroupName)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.Type != "page" || !isRegularPage(t.URL) {
			continue
		}
		if b, err := domain.NewBookmark(t.Title, t.URL); err == nil {
			group.Bookmarks = append(group.Bookmarks, b)
		}
	}
	if len(group.Bookmarks) == 0 {
		return nil, nil
	}
	return []domain.Group{group}, nil
}

func isRegularPage(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
