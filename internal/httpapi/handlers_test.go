package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"todovault.org/internal/todo"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

func TestRegisterConflictsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	resp := env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"username": "alice",
		"password": "secret",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", resp.Code)
	}

	resp = env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"username": "bob",
		"password": "ab",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("short password: status %d, want 400", resp.Code)
	}

	resp = env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"username":         "bob",
		"password":         "secret",
		"confirm_password": "different",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("mismatched confirmation: status %d, want 400", resp.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	resp := env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.Code)
	}

	resp = env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username": "nobody",
		"password": "secret",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status %d, want 401", resp.Code)
	}
}

func TestLoginTTLClamped(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	now := env.clock.Now()

	resp := env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username":  "alice",
		"password":  "secret",
		"ttl_hours": 999,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body.String())
	}
	body := decodeBody[tokenResponse](t, resp)
	if !body.ExpiresAt.Equal(now.Add(token.MaxTTL)) {
		t.Fatalf("oversized TTL not clamped: %v", body.ExpiresAt)
	}

	env.clock.Advance(time.Second)
	now = env.clock.Now()
	resp = env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username":  "alice",
		"password":  "secret",
		"ttl_hours": 2,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body.String())
	}
	body = decodeBody[tokenResponse](t, resp)
	if !body.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
		t.Fatalf("requested TTL not honored: %v", body.ExpiresAt)
	}

	// An explicit non-positive TTL is raised to the minimum, not swapped
	// for the default.
	env.clock.Advance(time.Second)
	now = env.clock.Now()
	resp = env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username":  "alice",
		"password":  "secret",
		"ttl_hours": -5,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body.String())
	}
	body = decodeBody[tokenResponse](t, resp)
	if !body.ExpiresAt.Equal(now.Add(token.MinTTL)) {
		t.Fatalf("negative TTL not clamped to minimum: %v", body.ExpiresAt)
	}

	env.clock.Advance(time.Second)
	now = env.clock.Now()
	resp = env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username":  "alice",
		"password":  "secret",
		"ttl_hours": 0,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body.String())
	}
	body = decodeBody[tokenResponse](t, resp)
	if !body.ExpiresAt.Equal(now.Add(token.MinTTL)) {
		t.Fatalf("zero TTL not clamped to minimum: %v", body.ExpiresAt)
	}
}

func TestOwnTokenListAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice")
	bobToken := env.registerAndLogin(t, "bob")

	resp := env.do(t, http.MethodGet, "/v1/tokens", aliceToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d", resp.Code)
	}
	recs := decodeBody[[]*token.Record](t, resp)
	if len(recs) != 1 || recs[0].Username != "alice" {
		t.Fatalf("unexpected records: %v", recs)
	}
	aliceRecordID := recs[0].ID

	// Bob cannot revoke alice's record, and learns nothing from trying.
	resp = env.do(t, http.MethodDelete, "/v1/tokens/"+aliceRecordID, bobToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("cross-owner revoke: status %d, want 404", resp.Code)
	}

	resp = env.do(t, http.MethodDelete, "/v1/tokens/"+aliceRecordID, aliceToken, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("self revoke: status %d, want 204", resp.Code)
	}

	// The revoked token no longer authenticates.
	resp = env.do(t, http.MethodGet, "/v1/tokens", aliceToken, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token still accepted: status %d", resp.Code)
	}
}

func TestSelfRevokePresentedToken(t *testing.T) {
	env := newTestEnv(t)
	raw := env.registerAndLogin(t, "alice")

	resp := env.do(t, http.MethodDelete, "/v1/tokens/current", raw, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204: %s", resp.Code, resp.Body.String())
	}

	// The token used for the revoke call is itself dead now.
	resp = env.do(t, http.MethodGet, "/v1/tokens", raw, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token still accepted: status %d", resp.Code)
	}
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice")

	for _, path := range []string{"/v1/admin/tokens", "/v1/admin/users"} {
		resp := env.do(t, http.MethodGet, path, aliceToken, nil)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("GET %s as non-admin: status %d, want 403", path, resp.Code)
		}
	}
}

func (e *testEnv) makeAdmin(t *testing.T, username string) {
	t.Helper()
	u, err := e.users.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if _, err := e.users.UpdateAdminFields(context.Background(), u.ID, user.AdminUpdate{
		Roles: []string{user.RoleUser, user.RoleAdmin},
	}); err != nil {
		t.Fatalf("UpdateAdminFields: %v", err)
	}
}

func TestAdminTokenManagement(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice")
	env.register(t, "root")
	env.makeAdmin(t, "root")
	rootToken := env.login(t, "root")

	resp := env.do(t, http.MethodGet, "/v1/admin/tokens", rootToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d", resp.Code)
	}
	recs := decodeBody[[]*token.Record](t, resp)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	var aliceRecordID string
	for _, rec := range recs {
		if rec.Username == "alice" {
			aliceRecordID = rec.ID
		}
	}

	resp = env.do(t, http.MethodPost, "/v1/admin/tokens/"+aliceRecordID+"/revoke", rootToken, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("admin revoke: status %d", resp.Code)
	}
	if resp := env.do(t, http.MethodGet, "/v1/todos", aliceToken, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("admin-revoked token still accepted: status %d", resp.Code)
	}

	resp = env.do(t, http.MethodDelete, "/v1/admin/tokens/"+aliceRecordID, rootToken, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("admin delete: status %d", resp.Code)
	}
	resp = env.do(t, http.MethodDelete, "/v1/admin/tokens/"+aliceRecordID, rootToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("deleting a missing record: status %d, want 404", resp.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.register(t, "root")
	env.makeAdmin(t, "root")
	rootToken := env.login(t, "root")

	resp := env.do(t, http.MethodGet, "/v1/admin/users", rootToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d", resp.Code)
	}
	users := decodeBody[[]*user.User](t, resp)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	var aliceID string
	for _, u := range users {
		if u.Username == "alice" {
			aliceID = u.ID
		}
	}

	resp = env.do(t, http.MethodPatch, "/v1/admin/users/"+aliceID, rootToken, map[string]any{
		"account_locked": true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: status %d: %s", resp.Code, resp.Body.String())
	}
	updated := decodeBody[*user.User](t, resp)
	if !updated.AccountLocked {
		t.Fatalf("lock not applied: %+v", updated)
	}

	// Locked accounts cannot log in.
	resp = env.do(t, http.MethodPost, "/v1/auth/token", "", map[string]any{
		"username": "alice",
		"password": "secret",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("locked login: status %d, want 401", resp.Code)
	}
}

func TestTodoCRUDOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	raw := env.registerAndLogin(t, "alice")

	resp := env.do(t, http.MethodPost, "/v1/todos", raw, map[string]any{"text": "buy milk"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", resp.Code, resp.Body.String())
	}
	created := decodeBody[*todo.Todo](t, resp)
	if resp.Header().Get("Location") != "/v1/todos/"+created.ID {
		t.Fatalf("missing Location header: %q", resp.Header().Get("Location"))
	}

	resp = env.do(t, http.MethodPatch, "/v1/todos/"+created.ID+"/done", raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("mark done: status %d", resp.Code)
	}
	if got := decodeBody[*todo.Todo](t, resp); !got.Done {
		t.Fatalf("todo not done: %+v", got)
	}

	resp = env.do(t, http.MethodGet, "/v1/todos?done=true", raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("filter: status %d", resp.Code)
	}
	if got := decodeBody[[]*todo.Todo](t, resp); len(got) != 1 {
		t.Fatalf("done filter returned %d todos", len(got))
	}

	resp = env.do(t, http.MethodGet, "/v1/todos/count", raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("count: status %d", resp.Code)
	}
	if got := decodeBody[map[string]int](t, resp); got["count"] != 1 {
		t.Fatalf("unexpected count: %v", got)
	}

	resp = env.do(t, http.MethodDelete, "/v1/todos/"+created.ID, raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: status %d", resp.Code)
	}
	resp = env.do(t, http.MethodGet, "/v1/todos/"+created.ID, raw, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("deleted todo still readable: status %d", resp.Code)
	}
}

func TestListLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	raw := env.registerAndLogin(t, "alice")

	resp := env.do(t, http.MethodPost, "/v1/lists", raw, map[string]any{"name": "groceries"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create list: status %d", resp.Code)
	}
	list := decodeBody[*todo.List](t, resp)

	resp = env.do(t, http.MethodPost, "/v1/todos", raw, map[string]any{"text": "milk"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create todo: status %d", resp.Code)
	}
	item := decodeBody[*todo.Todo](t, resp)

	resp = env.do(t, http.MethodPost, "/v1/lists/"+list.ID+"/todos/"+item.ID, raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("assign: status %d: %s", resp.Code, resp.Body.String())
	}

	// Deleting a non-empty list is refused.
	resp = env.do(t, http.MethodDelete, "/v1/lists/"+list.ID, raw, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("delete non-empty list: status %d, want 409", resp.Code)
	}

	resp = env.do(t, http.MethodPut, "/v1/todos/"+item.ID+"/list", raw, map[string]any{"list_id": ""})
	if resp.Code != http.StatusOK {
		t.Fatalf("unassign: status %d", resp.Code)
	}
	resp = env.do(t, http.MethodDelete, "/v1/lists/"+list.ID, raw, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete empty list: status %d", resp.Code)
	}
}

func TestOwnershipIsolationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice")
	bobToken := env.registerAndLogin(t, "bob")

	resp := env.do(t, http.MethodPost, "/v1/todos", aliceToken, map[string]any{"text": "private"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: status %d", resp.Code)
	}
	created := decodeBody[*todo.Todo](t, resp)

	// Bob sees 404, not 403: existence is not revealed.
	resp = env.do(t, http.MethodGet, "/v1/todos/"+created.ID, bobToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("cross-owner read: status %d, want 404", resp.Code)
	}
	resp = env.do(t, http.MethodDelete, "/v1/todos/"+created.ID, bobToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: status %d, want 404", resp.Code)
	}

	resp = env.do(t, http.MethodGet, "/v1/todos", bobToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: status %d", resp.Code)
	}
	if got := decodeBody[[]*todo.Todo](t, resp); len(got) != 0 {
		t.Fatalf("bob sees foreign todos: %v", got)
	}
}

func TestUnknownJSONFieldsRejected(t *testing.T) {
	env := newTestEnv(t)
	raw := env.registerAndLogin(t, "alice")

	resp := env.do(t, http.MethodPost, "/v1/todos", raw, map[string]any{
		"text":     "x",
		"username": "mallory",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status %d, want 400", resp.Code)
	}
}
