package handlers

import (
	"net/http"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
)

// Ping answers 204 behind auth. Clients call it before a storage-mode
// migration to verify the API is reachable and their token is valid.
func Ping(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
