package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(HeaderAuth))

	var body map[string]any
	decodeBody(t, recorder, &body)
	assert.Equal(t, "a@b.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "tokens")
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing body fields", body: map[string]string{}},
		{name: "bad email", body: map[string]string{"email": "nope", "password": "pw123456"}},
		{name: "short password", body: map[string]string{"email": "a@b.com", "password": "pw1"}},
		{name: "password over bcrypt limit", body: map[string]string{"email": "a@b.com", "password": strings.Repeat("p", 73)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, router, http.MethodPost, "/users", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@b.com")

	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
		"admin":    "true",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLogin(t *testing.T) {
	router := newTestRouter()
	userID, registerToken := registerUser(t, router, "a@b.com")

	recorder := doRequest(t, router, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	loginToken := recorder.Header().Get(HeaderAuth)
	assert.NotEmpty(t, loginToken)

	var body map[string]any
	decodeBody(t, recorder, &body)
	assert.Equal(t, userID.String(), body["id"])
	assert.Equal(t, "a@b.com", body["email"])

	// Both tokens resolve: multi-device sessions.
	for _, token := range []string{registerToken, loginToken} {
		me := doRequest(t, router, http.MethodGet, "/users/me", token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@b.com")

	for _, body := range []map[string]string{
		{"email": "a@b.com", "password": "wrong-password"},
		{"email": "nobody@b.com", "password": "pw123456"},
	} {
		recorder := doRequest(t, router, http.MethodPost, "/users/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	}
}

func TestMe(t *testing.T) {
	router := newTestRouter()
	userID, token := registerUser(t, router, "russ@test.com")

	recorder := doRequest(t, router, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	decodeBody(t, recorder, &body)
	assert.Equal(t, userID.String(), body["id"])
	assert.Equal(t, "russ@test.com", body["email"])
}

func TestMeUnauthenticated(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

func TestMeGarbageToken(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@b.com")

	recorder := doRequest(t, router, http.MethodGet, "/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

func TestLogout(t *testing.T) {
	router := newTestRouter()
	_, token := registerUser(t, router, "a@b.com")

	recorder := doRequest(t, router, http.MethodDelete, "/users/me/token", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// The token stops resolving even though its signature is still valid.
	me := doRequest(t, router, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestLogoutKeepsOtherTokens(t *testing.T) {
	router := newTestRouter()
	_, first := registerUser(t, router, "a@b.com")

	login := doRequest(t, router, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, login.Code)
	second := login.Header().Get(HeaderAuth)

	recorder := doRequest(t, router, http.MethodDelete, "/users/me/token", first, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	me := doRequest(t, router, http.MethodGet, "/users/me", second, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
