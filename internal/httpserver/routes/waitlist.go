package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/httpserver/handlers"
	"github.com/tabvault/tabvault/internal/httpserver/mw"
)

func init() { Register(registerWaitlist) }

// The waitlist endpoint is unauthenticated and therefore rate limited.
func registerWaitlist(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             3,
		RefillPerIPPerMin: 2,
		MaxEntries:        10_000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})
	r.With(limit).Post("/api/waitlist", handlers.JoinWaitlist(d))
}
