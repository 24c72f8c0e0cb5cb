package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/apiserver/internal/auth"
	"github.com/gotodo/apiserver/internal/services"
	"github.com/gotodo/apiserver/internal/store"
	"github.com/gotodo/apiserver/types"
)

// In-memory repositories backing the handler tests. They mirror the real
// repositories' contracts: ErrNotFound on misses, ErrDuplicateEmail on email
// reuse, owner scoping on every todo operation.

type fakeUserRepo struct {
	users map[uuid.UUID]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdateTokens(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

type fakeTodoRepo struct {
	todos []types.Todo
}

func (r *fakeTodoRepo) Create(_ context.Context, todo types.Todo) (types.Todo, error) {
	todo.ID = uuid.New()
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	r.todos = append(r.todos, todo)
	return todo, nil
}

func (r *fakeTodoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]types.Todo, error) {
	owned := make([]types.Todo, 0)
	for _, todo := range r.todos {
		if todo.OwnerID == ownerID {
			owned = append(owned, todo)
		}
	}
	return owned, nil
}

func (r *fakeTodoRepo) GetByOwner(_ context.Context, id, ownerID uuid.UUID) (types.Todo, error) {
	for _, todo := range r.todos {
		if todo.ID == id && todo.OwnerID == ownerID {
			return todo, nil
		}
	}
	return types.Todo{}, store.ErrNotFound
}

func (r *fakeTodoRepo) Update(_ context.Context, todo types.Todo) (types.Todo, error) {
	for i, existing := range r.todos {
		if existing.ID == todo.ID && existing.OwnerID == todo.OwnerID {
			todo.UpdatedAt = time.Now()
			r.todos[i] = todo
			return todo, nil
		}
	}
	return types.Todo{}, store.ErrNotFound
}

func (r *fakeTodoRepo) DeleteByOwner(_ context.Context, id, ownerID uuid.UUID) (types.Todo, error) {
	for i, todo := range r.todos {
		if todo.ID == id && todo.OwnerID == ownerID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return todo, nil
		}
	}
	return types.Todo{}, store.ErrNotFound
}

// newTestRouter wires the full route tree the way server.New does, minus the
// database and broker.
func newTestRouter() *chi.Mux {
	userRepo := newFakeUserRepo()
	todoRepo := &fakeTodoRepo{}

	tokenManager := auth.NewTokenManager("test-secret", time.Hour)
	userService := services.NewUserService(userRepo, tokenManager)
	todoService := services.NewTodoService(todoRepo, nil, "")

	authMiddleware := RequireAuth(userService)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/todos", func(r chi.Router) {
		TodoRouter(r, todoService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, authMiddleware)
	})
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderAuth, token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), dst))
}

// registerUser registers a fresh user and returns its id and auth token.
func registerUser(t *testing.T, router http.Handler, email string) (uuid.UUID, string) {
	t.Helper()

	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"email":    email,
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	token := recorder.Header().Get(HeaderAuth)
	require.NotEmpty(t, token)

	var body types.PublicUser
	decodeBody(t, recorder, &body)
	return body.ID, token
}
