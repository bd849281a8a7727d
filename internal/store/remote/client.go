package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
	"github.com/tabvault/tabvault/internal/utils"
)

// DefaultTimeout bounds every remote call. The adapter performs no
// retries; errors propagate to the invoking action.
const DefaultTimeout = 15 * time.Second

// Client is the remote adapter: authenticated HTTP against the
// tabvaultd REST API. Encryption at rest happens server-side and is
// opaque to callers.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a remote adapter for the given API base URL and Bearer
// token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type groupsPayload struct {
	UserID      string         `json:"userId"`
	WorkspaceID string         `json:"workspaceId"`
	Groups      []domain.Group `json:"groups"`
}

// Load fetches the group list for a scope. An unknown scope comes back
// as an empty list.
func (c *Client) Load(ctx context.Context, scope store.Scope) ([]domain.Group, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, "/api/bookmarks?"+scopeQuery(scope), nil)
	if err != nil {
		return nil, err
	}
	defer utils.Close(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("remote load %s: %w", scope.Key(), err)
	}

	var payload groupsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("remote load %s: failed to decode response: %w", scope.Key(), err)
	}
	if payload.Groups == nil {
		payload.Groups = []domain.Group{}
	}
	return payload.Groups, nil
}

// Save uploads the full group list for a scope.
func (c *Client) Save(ctx context.Context, scope store.Scope, groups []domain.Group) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if groups == nil {
		groups = []domain.Group{}
	}

	body, err := json.Marshal(groupsPayload{
		UserID:      scope.UserID,
		WorkspaceID: scope.WorkspaceID,
		Groups:      groups,
	})
	if err != nil {
		return fmt.Errorf("remote save %s: failed to encode: %w", scope.Key(), err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/bookmarks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("remote save %s: %w", scope.Key(), err)
	}
	return nil
}

// Delete removes a scope from the remote store.
func (c *Client) Delete(ctx context.Context, scope store.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodDelete, "/api/bookmarks?"+scopeQuery(scope), nil)
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("remote delete %s: %w", scope.Key(), err)
	}
	return nil
}

// Ping verifies the API is reachable and the token is accepted. Mode
// migration calls this before moving any data.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/ping", nil)
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("remote ping: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote request failed: %w", err)
	}
	return resp, nil
}

func scopeQuery(scope store.Scope) string {
	q := url.Values{}
	q.Set("userId", scope.UserID)
	q.Set("workspaceId", scope.WorkspaceID)
	return q.Encode()
}

// checkStatus maps HTTP status codes to errors. 401/403 surface as
// store.ErrUnauthorized so callers can branch on denied access.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return store.ErrUnauthorized
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
