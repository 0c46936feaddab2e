package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"todovault.org/internal/obs"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/register",
	"/v1/auth/token",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/metrics",
	"/",
}

// withAuth authenticates every non-public request. The checks run in a fixed
// order and the response never reveals which one failed beyond the 401/403
// split: signature, revocation, expiry and unknown-token all look alike.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			obs.AuthDecision("unauthenticated")
			writeProblem(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.codec.Decode(raw)
		if err != nil {
			obs.AuthDecision("unauthenticated")
			writeProblem(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.Kind != token.KindAPI {
			obs.AuthDecision("forbidden")
			writeProblem(w, r, http.StatusForbidden, "token kind not accepted here")
			return
		}

		rec, err := a.tokens.FindByToken(r.Context(), raw)
		if err != nil {
			if errors.Is(err, token.ErrNotFound) {
				obs.AuthDecision("unauthenticated")
				writeProblem(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			obs.AuthDecision("error")
			writeProblem(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		// Evaluated fresh on every request so revocation takes effect
		// immediately, no matter how far away the signed expiry is.
		if !token.IsActive(rec, a.now()) {
			obs.AuthDecision("unauthenticated")
			writeProblem(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		principal, err := a.users.FindByUsername(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				obs.AuthDecision("unauthenticated")
				writeProblem(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			obs.AuthDecision("error")
			writeProblem(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		obs.AuthDecision("ok")
		ctx := user.ContextWithPrincipal(r.Context(), *principal)
		ctx = user.ContextWithToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePrincipal fetches the authenticated principal or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	principal, ok := user.PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "authentication required")
		return user.User{}, false
	}
	return principal, true
}

// requireRole additionally demands a role label; authenticated callers
// without it get 403.
func requireRole(w http.ResponseWriter, r *http.Request, role string) (user.User, bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return user.User{}, false
	}
	if !principal.HasRole(role) {
		writeProblem(w, r, http.StatusForbidden, "insufficient role")
		return user.User{}, false
	}
	return principal, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	raw := strings.TrimSpace(header[len(bearer):])
	if raw == "" {
		return "", errors.New("missing bearer token")
	}
	return raw, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
