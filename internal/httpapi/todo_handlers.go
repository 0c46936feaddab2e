package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"todovault.org/internal/todo"
)

type createTodoRequest struct {
	Text string `json:"text"`
}

type updateTodoRequest struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type assignListRequest struct {
	ListID string `json:"list_id"`
}

func (a *API) handleTodos(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		var done *bool
		if q := r.URL.Query().Get("done"); q != "" {
			v, err := strconv.ParseBool(q)
			if err != nil {
				writeProblem(w, r, http.StatusBadRequest, "done must be a boolean")
				return
			}
			done = &v
		}
		todos, err := a.todos.Todos(r.Context(), principal.Username, done)
		if err != nil {
			translateError(w, r, err)
			return
		}
		if todos == nil {
			todos = []*todo.Todo{}
		}
		writeJSON(w, http.StatusOK, todos)
	case http.MethodPost:
		var req createTodoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t, err := a.todos.CreateTodo(r.Context(), principal.Username, req.Text)
		if err != nil {
			translateError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/todos/"+t.ID)
		writeJSON(w, http.StatusCreated, t)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTodoCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	count, err := a.todos.CountTodos(r.Context(), principal.Username)
	if err != nil {
		translateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (a *API) handleTodoResource(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/todos/"), "/")
	if path == "" {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 2 {
		a.handleTodoSubresource(w, r, principal.Username, id, parts[1])
		return
	}
	if len(parts) != 1 {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := a.todos.Todo(r.Context(), principal.Username, id)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodPut:
		var req updateTodoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t, err := a.todos.UpdateTodo(r.Context(), principal.Username, id, req.Text, req.Done)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		t, err := a.todos.DeleteTodo(r.Context(), principal.Username, id)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) handleTodoSubresource(w http.ResponseWriter, r *http.Request, owner, id, sub string) {
	switch sub {
	case "done", "undone":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		t, err := a.todos.SetDone(r.Context(), owner, id, sub == "done")
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case "list":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		var req assignListRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t, err := a.todos.AssignToList(r.Context(), owner, id, req.ListID)
		if err != nil {
			translateError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	default:
		writeProblem(w, r, http.StatusNotFound, "resource not found")
	}
}
