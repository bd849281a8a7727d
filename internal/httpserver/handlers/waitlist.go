package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/logger"
)

type waitlistRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// JoinWaitlist records an interested email address. Re-joining with the
// same address is a silent no-op.
func JoinWaitlist(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req waitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "a valid email is required")
			return
		}

		if err := d.Store.AddToWaitlist(r.Context(), req.Email); err != nil {
			d.Logger.Error("failed to record waitlist entry", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to join waitlist")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
