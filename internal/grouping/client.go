package grouping

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tabvault/tabvault/internal/logger"
)

// ClientTimeout bounds the grouping API call. Grouping is a
// convenience, not a dependency, so the timeout is short and every
// failure degrades to the local fallback.
const ClientTimeout = 20 * time.Second

// Client calls the tabvaultd grouping endpoint. Like the service it
// never fails: any error yields Fallback locally.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  logger.Logger
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a grouping client for the given API base URL and
// Bearer token.
func NewClient(baseURL, token string, log logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: ClientTimeout},
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type groupRequest struct {
	Items []Item `json:"items"`
}

type groupResponse struct {
	Groups []ResultGroup `json:"groups"`
}

// Group posts items to /api/groupBookmarks and returns the labeled
// groups, or Fallback(items) on any failure.
func (c *Client) Group(ctx context.Context, items []Item) []ResultGroup {
	if len(items) < MinItems {
		return Fallback(items)
	}

	body, err := json.Marshal(groupRequest{Items: items})
	if err != nil {
		return Fallback(items)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/groupBookmarks", bytes.NewReader(body))
	if err != nil {
		return Fallback(items)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("grouping request failed, using fallback", logger.Error(err))
		return Fallback(items)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("grouping request rejected, using fallback",
			logger.Int("status", resp.StatusCode))
		return Fallback(items)
	}

	var out groupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Groups) == 0 {
		c.logger.Warn("grouping response did not parse, using fallback")
		return Fallback(items)
	}
	return out.Groups
}
