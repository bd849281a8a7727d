package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/httpserver/handlers"
	"github.com/tabvault/tabvault/internal/httpserver/mw"
)

func init() { Register(registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/api/healthz", handlers.Healthz(d))
}
