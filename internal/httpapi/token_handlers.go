package httpapi

import (
	"net/http"
	"strings"

	"todovault.org/internal/audit"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

func (a *API) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	recs, err := a.tokens.FindAllByOwner(r.Context(), principal.Username)
	if err != nil {
		translateError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*token.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleTokenResource revokes one of the caller's own tokens. Records owned
// by someone else are reported as missing.
func (a *API) handleTokenResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/tokens/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// "current" revokes the token this very request authenticated with.
	if id == "current" {
		raw, ok := user.TokenFromContext(r.Context())
		if !ok {
			writeProblem(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		rec, err := a.tokens.FindByToken(r.Context(), raw)
		if err != nil {
			translateError(w, r, err)
			return
		}
		id = rec.ID
	}

	owned, err := a.findOwnedToken(r, principal.Username, id)
	if err != nil {
		translateError(w, r, err)
		return
	}
	if err := a.tokens.Revoke(r.Context(), owned.ID, a.now().UTC()); err != nil {
		translateError(w, r, err)
		return
	}

	ctx := audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))
	_ = audit.LogEvent(ctx, "auth.token.revoked", map[string]any{"token_id": owned.ID})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) findOwnedToken(r *http.Request, username, id string) (*token.Record, error) {
	recs, err := a.tokens.FindAllByOwner(r.Context(), username)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, token.ErrNotFound
}
