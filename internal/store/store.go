package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabvault/tabvault/internal/domain"
)

var (
	// ErrUnauthorized is returned by the remote adapter when the API
	// rejects the configured token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Scope identifies one persisted group list: a (user, workspace) pair.
type Scope struct {
	UserID      string
	WorkspaceID string
}

// Key renders the scope as a storage key fragment.
func (s Scope) Key() string {
	return s.UserID + "/" + s.WorkspaceID
}

// Validate rejects scopes with missing parts before any I/O happens.
func (s Scope) Validate() error {
	if s.UserID == "" || s.WorkspaceID == "" {
		return fmt.Errorf("invalid scope %q: user and workspace are required", s.Key())
	}
	return nil
}

// Store is the per-mode adapter contract. A missing scope loads as an
// empty list, never an error. I/O errors propagate to the caller and
// are not retried here.
type Store interface {
	Load(ctx context.Context, scope Scope) ([]domain.Group, error)
	Save(ctx context.Context, scope Scope, groups []domain.Group) error
	Delete(ctx context.Context, scope Scope) error
}

// Pinger is implemented by adapters that can verify access up front.
// Storage-mode migration pings the destination before touching data.
type Pinger interface {
	Ping(ctx context.Context) error
}
