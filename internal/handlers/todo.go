package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
	"github.com/gotodo/apiserver/types"
)

// TodoHandler provides HTTP handlers for todos.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler constructs a handler with the provided service.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// TodoRouter registers todo routes on the given router. Every route requires
// authentication.
func TodoRouter(r chi.Router, todoService *services.TodoService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTodoHandler(todoService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateTodo)
	r.Get("/", handler.ListTodos)
	r.Route("/{todoID}", func(r chi.Router) {
		r.Get("/", handler.GetTodo)
		r.Patch("/", handler.UpdateTodo)
		r.Delete("/", handler.DeleteTodo)
	})
}

type CreateTodoRequest struct {
	Text string `json:"text"`
}

// TodoResponse wraps a single todo.
type TodoResponse struct {
	Todo types.Todo `json:"todo"`
}

// TodoListResponse wraps the caller's todos.
type TodoListResponse struct {
	Todos []types.Todo `json:"todos"`
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.todoService.Create(r.Context(), user.ID, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrTextRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	todos, err := h.todoService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}

	writeJSON(w, http.StatusOK, TodoListResponse{Todos: todos})
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	todo, err := h.todoService.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch todo")
		return
	}

	writeJSON(w, http.StatusOK, TodoResponse{Todo: todo})
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	var patch types.TodoPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.todoService.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "todo not found")
		case errors.Is(err, services.ErrTextRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update todo")
		}
		return
	}

	writeJSON(w, http.StatusOK, TodoResponse{Todo: todo})
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id, err := parseTodoID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	todo, err := h.todoService.Delete(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	writeJSON(w, http.StatusOK, TodoResponse{Todo: todo})
}

// parseTodoID parses the path id. Malformed ids are indistinguishable from
// missing records so the id format does not leak.
func parseTodoID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "todoID"))
}
