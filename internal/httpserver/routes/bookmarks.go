package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/httpserver/handlers"
	"github.com/tabvault/tabvault/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	auth := mw.Auth(d.APIToken, d.Logger)
	r.With(auth).Get("/api/bookmarks", handlers.GetBookmarks(d))
	r.With(auth).Post("/api/bookmarks", handlers.SaveBookmarks(d))
	r.With(auth).Delete("/api/bookmarks", handlers.DeleteBookmarks(d))
	r.With(auth).Get("/api/ping", handlers.Ping(d))
}
