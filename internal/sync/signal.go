package sync

import (
	"sync"
	"time"
)

// Type names a reconciliation signal channel.
type Type string

const (
	// TypeGroupsChanged announces that a scope's group list was
	// persisted by some client; receivers reload their view.
	TypeGroupsChanged Type = "groups_changed"
	// TypeSelectedGroup broadcasts the last-selected group so every
	// open view lands on the same group.
	TypeSelectedGroup Type = "selected_group"
	// TypeModeChanged announces a storage-mode migration for a scope.
	TypeModeChanged Type = "mode_changed"
)

// Signal is one reconciliation message between concurrent clients of
// the same persisted store. Timestamp is unix milliseconds at send
// time; receivers use it to drop duplicates and stale deliveries.
type Signal struct {
	Type        Type   `json:"type"`
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
	Value       string `json:"value,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// NewSignal stamps a signal with the current time.
func NewSignal(t Type, userID, workspaceID, value string) Signal {
	return Signal{
		Type:        t,
		UserID:      userID,
		WorkspaceID: workspaceID,
		Value:       value,
		Timestamp:   time.Now().UnixMilli(),
	}
}

func (s Signal) key() string {
	return string(s.Type) + "|" + s.UserID + "/" + s.WorkspaceID
}

// Guard enforces per-channel ordering: for any two signals of the same
// type and scope, only the one with the greater timestamp takes
// effect. A signal whose timestamp is not beyond the last applied one
// is a no-op.
type Guard struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{last: make(map[string]int64)}
}

// Apply reports whether the signal should take effect, and records its
// timestamp when it does.
func (g *Guard) Apply(s Signal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s.Timestamp <= g.last[s.key()] {
		return false
	}
	g.last[s.key()] = s.Timestamp
	return true
}

// Guarded wraps a handler so it only fires for signals the guard
// accepts.
func Guarded(g *Guard, h Handler) Handler {
	return func(s Signal) {
		if g.Apply(s) {
			h(s)
		}
	}
}
