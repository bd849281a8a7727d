package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabvault/tabvault/internal/grouping"
	"github.com/tabvault/tabvault/internal/httpserver/deps"
)

type groupingRequest struct {
	Items []grouping.Item `json:"items" validate:"required,min=1,dive"`
}

type groupingResponse struct {
	Groups []grouping.ResultGroup `json:"groups"`
}

// GroupBookmarks labels a bookmark batch. Without a configured grouping
// service the endpoint still answers, with the single-group fallback.
func GroupBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "items is required and must not be empty")
			return
		}

		var groups []grouping.ResultGroup
		if d.Grouping != nil {
			groups = d.Grouping.Group(r.Context(), req.Items)
		} else {
			groups = grouping.Fallback(req.Items)
		}
		writeJSON(w, http.StatusOK, groupingResponse{Groups: groups})
	}
}
