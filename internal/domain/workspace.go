package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StorageMode selects which adapter serves a workspace's reads and
// writes.
type StorageMode string

const (
	// StorageModeLocal keeps the workspace in the on-device store.
	StorageModeLocal StorageMode = "local"
	// StorageModeRemote keeps the workspace in the encrypted cloud
	// store behind the REST API.
	StorageModeRemote StorageMode = "remote"
)

// ParseStorageMode converts a user-supplied string into a StorageMode.
func ParseStorageMode(s string) (StorageMode, error) {
	switch StorageMode(strings.ToLower(strings.TrimSpace(s))) {
	case StorageModeLocal:
		return StorageModeLocal, nil
	case StorageModeRemote:
		return StorageModeRemote, nil
	default:
		return "", fmt.Errorf("unknown storage mode %q (want local or remote)", s)
	}
}

// Workspace is a named, independently storable collection of groups.
// The group list itself is persisted separately, keyed by
// (userID, workspaceID); the workspace record only carries identity
// and the per-workspace storage mode.
type Workspace struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	StorageMode StorageMode `json:"storageMode"`
}

// NewWorkspace creates a workspace with a fresh ID in local mode.
func NewWorkspace(name string) (Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Workspace{}, ErrEmptyName
	}
	return Workspace{ID: uuid.NewString(), Name: name, StorageMode: StorageModeLocal}, nil
}
