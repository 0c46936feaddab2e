package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"todovault.org/internal/obs"
	"todovault.org/internal/todo"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

// ReadyProbe pings the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Codec  *token.Codec
	Issuer *token.Issuer
	Tokens token.Store
	Users  *user.Service
	Todos  *todo.Service

	ReadyProbe ReadyProbe
	Version    string

	// Clock override for tests; defaults to time.Now.
	Now func() time.Time

	MaxBodyBytes       int64
	LoginRateBurst     int
	LoginRatePerSecond int
}

// API is the HTTP layer.
type API struct {
	mux    *http.ServeMux
	codec  *token.Codec
	issuer *token.Issuer
	tokens token.Store
	users  *user.Service
	todos  *todo.Service

	readyProbe ReadyProbe
	version    string
	now        func() time.Time

	maxBodyBytes int64
}

// New constructs the API and registers all routes.
func New(d Deps) (*API, error) {
	if d.Codec == nil || d.Issuer == nil || d.Tokens == nil {
		return nil, errors.New("httpapi: token codec, issuer and store are required")
	}
	if d.Users == nil || d.Todos == nil {
		return nil, errors.New("httpapi: user and todo services are required")
	}
	a := &API{
		mux:          http.NewServeMux(),
		codec:        d.Codec,
		issuer:       d.Issuer,
		tokens:       d.Tokens,
		users:        d.Users,
		todos:        d.Todos,
		readyProbe:   d.ReadyProbe,
		version:      d.Version,
		now:          d.Now,
		maxBodyBytes: d.MaxBodyBytes,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}
	burst, perSecond := d.LoginRateBurst, d.LoginRatePerSecond
	if burst <= 0 {
		burst = 10
	}
	if perSecond <= 0 {
		perSecond = 2
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.HandleFunc("/v1/info", a.handleInfo)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.Handle("/v1/auth/token", RateLimit(http.HandlerFunc(a.handleAuthToken), burst, perSecond))

	a.mux.HandleFunc("/v1/tokens", a.handleTokens)
	a.mux.HandleFunc("/v1/tokens/", a.handleTokenResource)

	a.mux.HandleFunc("/v1/todos", a.handleTodos)
	a.mux.HandleFunc("/v1/todos/count", a.handleTodoCount)
	a.mux.HandleFunc("/v1/todos/", a.handleTodoResource)

	a.mux.HandleFunc("/v1/lists", a.handleLists)
	a.mux.HandleFunc("/v1/lists/", a.handleListResource)

	a.mux.HandleFunc("/v1/admin/tokens", a.handleAdminTokens)
	a.mux.HandleFunc("/v1/admin/tokens/", a.handleAdminTokenResource)
	a.mux.HandleFunc("/v1/admin/users", a.handleAdminUsers)
	a.mux.HandleFunc("/v1/admin/users/", a.handleAdminUserResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the fully wrapped handler chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "todovault-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "todovault-api",
		"time":    a.now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
