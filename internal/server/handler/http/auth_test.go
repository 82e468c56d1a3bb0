package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	okResult := &service.AuthResult{
		Token: "tok",
		User:  models.PublicUser{ID: alice.UserID, Name: "Alice", Email: "alice@example.com", Role: models.RoleUser},
	}

	tests := []struct {
		name        string
		body        string
		registerErr error
		wantCode    int
		wantMessage string
	}{
		{
			name:     "created",
			body:     `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:        "invalid JSON",
			body:        `not a json`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name:        "short password",
			body:        `{"name":"Alice","email":"alice@example.com","password":"123"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "password must be at least 6 characters",
		},
		{
			name:        "bad email",
			body:        `{"name":"Alice","email":"nope","password":"secret1"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Please include a valid email",
		},
		{
			name:        "duplicate",
			body:        `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			registerErr: service.ErrDuplicateEmail,
			wantCode:    http.StatusConflict,
			wantMessage: "User already exists with this email",
		},
		{
			name:        "store failure",
			body:        `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			registerErr: errDB,
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			auth := &fakeAuthService{
				RegisterFunc: func(_ context.Context, name, email, password string) (*service.AuthResult, error) {
					called = true
					assert.Equal(t, "Alice", name)
					if tt.registerErr != nil {
						return nil, tt.registerErr
					}
					return okResult, nil
				},
			}
			h := testServer{auth: auth}.handler()

			rec, body := do(t, h, http.MethodPost, "/api/auth/register", tt.body, false)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusCreated {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "tok", body["token"])
				user := body["user"].(map[string]any)
				assert.Equal(t, "alice@example.com", user["email"])
				assert.NotContains(t, user, "password")
				assert.NotContains(t, user, "createdAt")
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			if rec.Code == http.StatusBadRequest {
				assert.False(t, called, "service must not be called on invalid input")
			}
		})
	}
}

func TestAuthHandler_ValidationErrorsListed(t *testing.T) {
	h := testServer{}.handler()

	rec, body := do(t, h, http.MethodPost, "/api/auth/register", `{"email":"x","password":""}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.(map[string]any)["field"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"name": true, "email": true, "password": true}, fields)
}

func TestAuthHandler_TrimsBeforeValidating(t *testing.T) {
	var gotEmail, gotName string
	auth := &fakeAuthService{
		LoginFunc: func(_ context.Context, email, _ string) (*service.AuthResult, error) {
			gotEmail = email
			return &service.AuthResult{Token: "tok"}, nil
		},
		RegisterFunc: func(_ context.Context, name, email, _ string) (*service.AuthResult, error) {
			gotName, gotEmail = name, email
			return &service.AuthResult{Token: "tok"}, nil
		},
	}
	h := testServer{auth: auth}.handler()

	rec, _ := do(t, h, http.MethodPost, "/api/auth/login", `{"email":" ALICE@example.com ","password":"secret1"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALICE@example.com", gotEmail)

	rec, _ = do(t, h, http.MethodPost, "/api/auth/register", `{"name":"  Alice ","email":" alice@example.com","password":"secret1"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alice", gotName)
	assert.Equal(t, "alice@example.com", gotEmail)

	gotName = ""
	rec, body := do(t, h, http.MethodPost, "/api/auth/register", `{"name":"   ","email":"alice@example.com","password":"secret1"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", body["message"])
	assert.Empty(t, gotName)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name     string
		loginErr error
		wantCode int
	}{
		{name: "ok", wantCode: http.StatusOK},
		{name: "bad credentials", loginErr: service.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "store failure", loginErr: errDB, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthService{
				LoginFunc: func(_ context.Context, email, password string) (*service.AuthResult, error) {
					assert.Equal(t, "alice@example.com", email)
					assert.Equal(t, "secret1", password)
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return &service.AuthResult{Token: "tok"}, nil
				},
			}
			h := testServer{auth: auth}.handler()

			rec, body := do(t, h, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`, false)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.loginErr == service.ErrInvalidCredentials {
				assert.Equal(t, "Invalid credentials", body["message"])
			}
		})
	}
}

func TestAuthHandler_ErrorDetail(t *testing.T) {
	auth := &fakeAuthService{
		LoginFunc: func(context.Context, string, string) (*service.AuthResult, error) {
			return nil, errDB
		},
	}
	payload := `{"email":"alice@example.com","password":"secret1"}`

	_, body := do(t, testServer{auth: auth}.handler(), http.MethodPost, "/api/auth/login", payload, false)
	assert.NotContains(t, body, "error")

	_, body = do(t, testServer{auth: auth, detail: true}.handler(), http.MethodPost, "/api/auth/login", payload, false)
	assert.Equal(t, "db down", body["error"])
}

func TestAuthHandler_Profile(t *testing.T) {
	created := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	auth := &fakeAuthService{
		ProfileFunc: func(_ context.Context, userID string) (*models.PublicUser, error) {
			if userID != alice.UserID {
				return nil, service.ErrNotFound
			}
			return &models.PublicUser{ID: userID, Name: "Alice", CreatedAt: &created}, nil
		},
	}
	h := testServer{auth: auth}.handler()

	rec, body := do(t, h, http.MethodGet, "/api/auth/profile", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "2024-05-01T00:00:00Z", user["createdAt"])

	rec, body = do(t, h, http.MethodGet, "/api/auth/profile", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", body["message"])
}

func TestAuthHandler_ProfileNotFound(t *testing.T) {
	auth := &fakeAuthService{
		ProfileFunc: func(context.Context, string) (*models.PublicUser, error) {
			return nil, service.ErrNotFound
		},
	}
	rec, body := do(t, testServer{auth: auth}.handler(), http.MethodGet, "/api/auth/profile", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["message"])
}
