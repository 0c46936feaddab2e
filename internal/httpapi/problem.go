package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"todovault.org/internal/todo"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

// problem is the error body for every non-2xx response.
type problem struct {
	Status    int    `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, code int, detail string) {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		w.Header().Set("WWW-Authenticate", `Bearer realm="todovault"`)
	}
	writeJSON(w, code, problem{
		Status:    code,
		Title:     http.StatusText(code),
		Detail:    detail,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// translateError is the single place domain errors become HTTP statuses.
func translateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, todo.ErrInvalidInput),
		errors.Is(err, token.ErrInvalidInput):
		writeProblem(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrAccountDisabled):
		writeProblem(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrAlreadyExists),
		errors.Is(err, todo.ErrListNotEmpty):
		writeProblem(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, todo.ErrNotFound),
		errors.Is(err, token.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, err.Error())
	default:
		writeProblem(w, r, http.StatusInternalServerError, "internal error")
	}
}
