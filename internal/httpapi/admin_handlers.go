package httpapi

import (
	"net/http"
	"strings"

	"todovault.org/internal/audit"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

func (a *API) handleAdminTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := requireRole(w, r, user.RoleAdmin); !ok {
		return
	}
	recs, err := a.tokens.ListAll(r.Context())
	if err != nil {
		translateError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*token.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (a *API) handleAdminTokenResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdmin); !ok {
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/tokens/"), "/")
	if path == "" {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	ctx := audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))

	switch {
	case len(parts) == 2 && parts[1] == "revoke":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		if err := a.tokens.Revoke(r.Context(), parts[0], a.now().UTC()); err != nil {
			translateError(w, r, err)
			return
		}
		_ = audit.LogEvent(ctx, "admin.token.revoked", map[string]any{"token_id": parts[0]})
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 1:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		if err := a.tokens.Delete(r.Context(), parts[0]); err != nil {
			translateError(w, r, err)
			return
		}
		_ = audit.LogEvent(ctx, "admin.token.deleted", map[string]any{"token_id": parts[0]})
		w.WriteHeader(http.StatusNoContent)
	default:
		writeProblem(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := requireRole(w, r, user.RoleAdmin); !ok {
		return
	}
	users, err := a.users.List(r.Context())
	if err != nil {
		translateError(w, r, err)
		return
	}
	if users == nil {
		users = []*user.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type adminUserUpdateRequest struct {
	AccountExpired     *bool    `json:"account_expired"`
	AccountLocked      *bool    `json:"account_locked"`
	CredentialsExpired *bool    `json:"credentials_expired"`
	Roles              []string `json:"roles"`
}

func (a *API) handleAdminUserResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	if _, ok := requireRole(w, r, user.RoleAdmin); !ok {
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	var req adminUserUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.users.UpdateAdminFields(r.Context(), id, user.AdminUpdate{
		AccountExpired:     req.AccountExpired,
		AccountLocked:      req.AccountLocked,
		CredentialsExpired: req.CredentialsExpired,
		Roles:              req.Roles,
	})
	if err != nil {
		translateError(w, r, err)
		return
	}
	ctx := audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))
	_ = audit.LogEvent(ctx, "admin.user.updated", map[string]any{"user_id": updated.ID})
	writeJSON(w, http.StatusOK, updated)
}
