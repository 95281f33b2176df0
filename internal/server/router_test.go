package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/cache"
	"github.com/nmelnikov/authcove/internal/config"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    struct {
		User   map[string]any `json:"user"`
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	} `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store := cache.NewMemory()
	userSvc := users.NewService(users.NewMemoryRepository(), store, nil, nil, nil, time.Hour)
	tokenSvc := token.NewService(&config.TokenConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Issuer:     "authcove-test",
		AccessTTL:  config.Duration(15 * time.Minute),
		RefreshTTL: config.Duration(4 * time.Hour),
	}, store, nil, nil)

	return NewRouter(Deps{
		Users:         userSvc,
		Tokens:        tokenSvc,
		Authenticator: auth.NewAuthenticator(tokenSvc, userSvc, nil),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func registerUser(t *testing.T, router *gin.Engine, email string) envelope {
	t.Helper()

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     email,
		"password":  "correct horse battery",
		"firstName": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, env.Data.Tokens.AccessToken)
	require.NotEmpty(t, env.Data.Tokens.RefreshToken)
	return env
}

func TestRegisterAndAccessProtectedRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")

	rec, me := doJSON(t, router, http.MethodGet, "/api/users/me", env.Data.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", me.Data.User["email"])

	// The password hash must never appear in a response body.
	assert.NotContains(t, me.Data.User, "passwordHash")
	assert.NotContains(t, me.Data.User, "password_hash")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing email", body: gin.H{"password": "long-enough-pass"}},
		{name: "bad email", body: gin.H{"email": "not-an-email", "password": "long-enough-pass"}},
		{name: "short password", body: gin.H{"email": "a@b.com", "password": "short"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "another-long-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, env.Data.Tokens.AccessToken)
	assert.NotEmpty(t, env.Data.Tokens.RefreshToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{name: "wrong password", email: "alice@example.com"},
		{name: "unknown email", email: "nobody@example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
				"email":    tt.email,
				"password": "wrong password",
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "invalid credentials", env.Error)
		})
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")
	access := env.Data.Tokens.AccessToken
	refresh := env.Data.Tokens.RefreshToken

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The revoked access token no longer authenticates.
	rec, out := doJSON(t, router, http.MethodGet, "/api/users/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token has been revoked", out.Error)

	// The refresh token can no longer be redeemed either.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/refresh", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")
	oldRefresh := env.Data.Tokens.RefreshToken

	rec, refreshed := doJSON(t, router, http.MethodPost, "/api/auth/refresh", oldRefresh, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, refreshed.Data.Tokens.AccessToken)
	require.NotEmpty(t, refreshed.Data.Tokens.RefreshToken)
	assert.NotEqual(t, oldRefresh, refreshed.Data.Tokens.RefreshToken)

	// The new access token works.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/me", refreshed.Data.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The superseded refresh token is spent.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/refresh", oldRefresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")

	rec, out := doJSON(t, router, http.MethodPost, "/api/auth/refresh", env.Data.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", out.Error)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")
	access := env.Data.Tokens.AccessToken

	rec, updated := doJSON(t, router, http.MethodPut, "/api/users/me", access, gin.H{
		"firstName": "Alicia",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alicia", updated.Data.User["firstName"])

	rec, _ = doJSON(t, router, http.MethodPut, "/api/users/me", access, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")
	access := env.Data.Tokens.AccessToken

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/users/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The token is still signed correctly but its user is gone.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserByID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := registerUser(t, router, "alice@example.com")
	access := env.Data.Tokens.AccessToken

	rec, out := doJSON(t, router, http.MethodGet, "/api/users/1", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", out.Data.User["email"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/999", access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/abc", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
