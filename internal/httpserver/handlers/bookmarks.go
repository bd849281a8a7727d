package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/httpserver/deps"
	"github.com/tabvault/tabvault/internal/logger"
	"github.com/tabvault/tabvault/internal/store"
	syncbus "github.com/tabvault/tabvault/internal/sync"
)

var validate = validator.New()

// groupsPayload is the wire shape shared with the remote adapter.
type groupsPayload struct {
	UserID      string         `json:"userId" validate:"required"`
	WorkspaceID string         `json:"workspaceId" validate:"required"`
	Groups      []domain.Group `json:"groups" validate:"required"`
}

func scopeFromQuery(r *http.Request) (store.Scope, bool) {
	scope := store.Scope{
		UserID:      r.URL.Query().Get("userId"),
		WorkspaceID: r.URL.Query().Get("workspaceId"),
	}
	return scope, scope.Validate() == nil
}

// GetBookmarks serves a scope's group list. Unknown scopes come back
// as an empty list, matching the storage contract.
func GetBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeFromQuery(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "userId and workspaceId are required")
			return
		}

		groups, err := d.Store.Load(r.Context(), scope)
		if err != nil {
			d.Logger.Error("failed to load scope", logger.String("scope", scope.Key()), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load bookmarks")
			return
		}
		writeJSON(w, http.StatusOK, groupsPayload{
			UserID:      scope.UserID,
			WorkspaceID: scope.WorkspaceID,
			Groups:      groups,
		})
	}
}

// SaveBookmarks overwrites a scope's group list and broadcasts the
// change so other connected clients reload.
func SaveBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload groupsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(payload); err != nil {
			writeError(w, http.StatusBadRequest, "userId, workspaceId and groups are required")
			return
		}

		scope := store.Scope{UserID: payload.UserID, WorkspaceID: payload.WorkspaceID}
		if err := d.Store.Save(r.Context(), scope, payload.Groups); err != nil {
			d.Logger.Error("failed to save scope", logger.String("scope", scope.Key()), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save bookmarks")
			return
		}

		if d.Bus != nil {
			sig := syncbus.NewSignal(syncbus.TypeGroupsChanged, scope.UserID, scope.WorkspaceID, "")
			if err := d.Bus.Publish(r.Context(), sig); err != nil {
				// Broadcast is best effort, the write already succeeded.
				d.Logger.Warn("failed to broadcast groups change", logger.Error(err))
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteBookmarks removes a scope.
func DeleteBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeFromQuery(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "userId and workspaceId are required")
			return
		}

		if err := d.Store.Delete(r.Context(), scope); err != nil {
			d.Logger.Error("failed to delete scope", logger.String("scope", scope.Key()), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmarks")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
