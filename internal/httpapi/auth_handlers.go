package httpapi

import (
	"net/http"
	"time"

	"todovault.org/internal/audit"
	"todovault.org/internal/obs"
	"todovault.org/internal/token"
)

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Nil means "use the default lifetime". Any explicit value, including
	// zero and negatives, goes through the issuer's clamp.
	TTLHours *int `json:"ttl_hours,omitempty"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.users.Register(r.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		translateError(w, r, err)
		return
	}
	ctx := audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))
	_ = audit.LogEvent(ctx, "user.registered", map[string]any{"username": u.Username})
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u, err := a.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		translateError(w, r, err)
		return
	}

	var (
		rec  *token.Record
		terr error
	)
	if req.TTLHours != nil {
		rec, terr = a.issuer.IssueWithTTL(r.Context(), u.Username, time.Duration(*req.TTLHours)*time.Hour)
	} else {
		rec, terr = a.issuer.Issue(r.Context(), u.Username)
	}
	if terr != nil {
		translateError(w, r, terr)
		return
	}

	obs.TokenIssued()
	ctx := audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))
	_ = audit.LogEvent(ctx, "auth.token.issued", map[string]any{
		"username":   u.Username,
		"expires_at": rec.ExpiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{Token: rec.Token, ExpiresAt: rec.ExpiresAt})
}
