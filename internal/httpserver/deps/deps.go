package deps

import (
	"context"
	"time"

	"github.com/tabvault/tabvault/internal/grouping"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
	syncbus "github.com/tabvault/tabvault/internal/sync"
)

// ScopeStore is what the bookmark endpoints need from the server-side
// store. *serverstore.Store satisfies it; handler tests use fakes.
type ScopeStore interface {
	store.Store
	ListWorkspaceIDs(ctx context.Context, userID string) ([]string, error)
	AddToWaitlist(ctx context.Context, email string) error
	Ping(ctx context.Context) error
}

// Grouper labels a bookmark batch. *grouping.Service satisfies it.
type Grouper interface {
	Group(ctx context.Context, items []grouping.Item) []grouping.ResultGroup
}

// Publisher broadcasts a change signal after a scope write so other
// connected clients reload. syncbus.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, s syncbus.Signal) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy

	APIToken string     // Bearer token the /api endpoints require
	Store    ScopeStore // sealed scope store
	Grouping Grouper    // nil = fallback-only grouping
	Bus      Publisher  // nil = no cross-client broadcast
}
