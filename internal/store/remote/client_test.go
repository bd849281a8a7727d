package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tabvault/tabvault/internal/domain"
	"github.com/tabvault/tabvault/internal/store"
)

func TestLoadSendsScopeAndToken(t *testing.T) {
	var gotAuth, gotUser, gotWorkspace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUser = r.URL.Query().Get("userId")
		gotWorkspace = r.URL.Query().Get("workspaceId")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userId":      gotUser,
			"workspaceId": gotWorkspace,
			"groups": []domain.Group{
				{ID: "g1", GroupName: "Work", Bookmarks: []domain.Bookmark{}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	groups, err := c.Load(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", gotAuth)
	}
	if gotUser != "u1" || gotWorkspace != "w1" {
		t.Errorf("scope params = (%q, %q), want (u1, w1)", gotUser, gotWorkspace)
	}
	if len(groups) != 1 || groups[0].GroupName != "Work" {
		t.Errorf("Load() = %+v", groups)
	}
}

func TestLoadEmptyGroupsNeverNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"userId":"u1","workspaceId":"w1"}`))
	}))
	defer srv.Close()

	groups, err := New(srv.URL, "t").Load(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if groups == nil {
		t.Error("Load() returned nil groups, want empty slice")
	}
}

func TestSavePostsPayload(t *testing.T) {
	var got groupsPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	groups := domain.Normalize(nil)
	err := New(srv.URL, "t").Save(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"}, groups)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got.UserID != "u1" || got.WorkspaceID != "w1" {
		t.Errorf("payload scope = (%q, %q)", got.UserID, got.WorkspaceID)
	}
	if len(got.Groups) != 1 || !got.Groups[0].IsPlaceholder() {
		t.Errorf("payload groups = %+v", got.Groups)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad")
	_, err := c.Load(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"})
	if !errors.Is(err, store.ErrUnauthorized) {
		t.Errorf("Load() error = %v, want store.ErrUnauthorized", err)
	}

	if err := c.Ping(context.Background()); !errors.Is(err, store.ErrUnauthorized) {
		t.Errorf("Ping() error = %v, want store.ErrUnauthorized", err)
	}
}

func TestServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, "t").Delete(context.Background(), store.Scope{UserID: "u1", WorkspaceID: "w1"})
	if err == nil {
		t.Fatal("Delete() should propagate server errors")
	}
}

func TestPingOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" {
			t.Errorf("path = %s, want /api/ping", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL, "t").Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
