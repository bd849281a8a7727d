package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/httpserver/handlers"
	"github.com/tabvault/tabvault/internal/httpserver/mw"
)

func init() { Register(registerGrouping) }

func registerGrouping(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.APIToken, d.Logger)).Post("/api/groupBookmarks", handlers.GroupBookmarks(d))
}
