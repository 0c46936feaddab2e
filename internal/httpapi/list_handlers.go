package httpapi

import (
	"net/http"
	"strings"

	"todovault.org/internal/todo"
)

type createListRequest struct {
	Name string `json:"name"`
}

func (a *API) handleLists(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		lists, err := a.todos.Lists(r.Context(), principal.Username)
		if err != nil {
			translateError(w, r, err)
			return
		}
		if lists == nil {
			lists = []*todo.List{}
		}
		writeJSON(w, http.StatusOK, lists)
	case http.MethodPost:
		var req createListRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l, err := a.todos.CreateList(r.Context(), principal.Username, req.Name)
		if err != nil {
			translateError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/lists/"+l.ID)
		writeJSON(w, http.StatusCreated, l)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleListResource(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/lists/"), "/")
	if path == "" {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	// POST /v1/lists/{id}/todos/{todoID} assigns an existing todo.
	if len(parts) == 3 && parts[1] == "todos" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		t, err := a.todos.AssignToList(r.Context(), principal.Username, parts[2], id)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
		return
	}
	if len(parts) != 1 {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		l, err := a.todos.List(r.Context(), principal.Username, id)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	case http.MethodPut:
		var req createListRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l, err := a.todos.UpdateList(r.Context(), principal.Username, id, req.Name)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	case http.MethodDelete:
		l, err := a.todos.DeleteList(r.Context(), principal.Username, id)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
