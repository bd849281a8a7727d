package serverstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
)

// Store persists scoped group lists in Redis, sealed with AES-GCM
// before they leave the process. It backs the /api/bookmarks endpoints.
type Store struct {
	client *redis.Client
	box    *sealer
}

// New creates a server store. key must be a 32-byte AES-256 key.
func New(client *redis.Client, key []byte) (*Store, error) {
	box, err := newSealer(key)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, box: box}, nil
}

// Load returns the group list for a scope. A scope never written
// loads as an empty list.
func (s *Store) Load(ctx context.Context, scope store.Scope) ([]domain.Group, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	sealed, err := s.client.Get(ctx, GroupsKey(scope.UserID, scope.WorkspaceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Group{}, nil
		}
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	data, err := s.box.open(sealed)
	if err != nil {
		return nil, err
	}
	var groups []domain.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	return groups, nil
}

// Save seals and writes the group list, and records the workspace in
// the user's scope set.
func (s *Store) Save(ctx context.Context, scope store.Scope, groups []domain.Group) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}
	sealed, err := s.box.seal(data)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, GroupsKey(scope.UserID, scope.WorkspaceID), sealed, 0)
	pipe.SAdd(ctx, ScopesKey(scope.UserID), scope.WorkspaceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save groups: %w", err)
	}
	return nil
}

// Delete removes a scope's payload and its scope-set entry. Deleting a
// missing scope is not an error.
func (s *Store) Delete(ctx context.Context, scope store.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, GroupsKey(scope.UserID, scope.WorkspaceID))
	pipe.SRem(ctx, ScopesKey(scope.UserID), scope.WorkspaceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete groups: %w", err)
	}
	return nil
}

// ListWorkspaceIDs returns the workspace IDs a user has stored.
func (s *Store) ListWorkspaceIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, ScopesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}
	return ids, nil
}

// AddToWaitlist records an email address once; re-adding is a no-op.
func (s *Store) AddToWaitlist(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.client.SAdd(ctx, KeyWaitlist, email).Err(); err != nil {
		return fmt.Errorf("failed to add to waitlist: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
