package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "healthy")
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := setupTestServer(t)
	account := ts.registerAndVerify(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "writer@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, account.ID, result.Account.ID)
	assert.Equal(t, account.AccessToken, result.Account.AccessToken)
	assert.NotEmpty(t, result.SessionToken)

	// The session token resumes the account.
	resp = ts.api.Post("/api/v1/auth/session", map[string]any{"token": result.SessionToken})
	require.Equal(t, http.StatusOK, resp.Code)
	resumed := decode[AccountResponse](t, resp.Body.Bytes())
	assert.Equal(t, account.ID, resumed.ID)
}

func TestLoginBeforeVerification(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      "pending@example.com",
		"password":   "secret-password",
		"first_name": "Nour",
		"last_name":  "Writer",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "userCreated")

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "pending@example.com",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "verifyRequired")
}

func TestRegisterDuplicateEmailResponse(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndVerify(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      "writer@example.com",
		"password":   "secret-password",
		"first_name": "Nour",
		"last_name":  "Writer",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "emailExists")
}

func TestLoginInvalidCredentialsResponse(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndVerify(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "writer@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalidCredits")
}

func TestPasswordResetEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndVerify(t, "writer@example.com")

	resp := ts.api.Post("/api/v1/auth/request-reset", map[string]any{"email": "writer@example.com"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "recoverPasswordSent")

	resp = ts.api.Post("/api/v1/auth/request-reset", map[string]any{"email": "writer@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Contains(t, resp.Body.String(), "waitResetAllow")

	resp = ts.api.Post("/api/v1/auth/request-reset", map[string]any{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "emailNotExist")
}

func TestUpdateUserRequiresOwnToken(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.registerAndVerify(t, "owner@example.com")
	other := ts.registerAndVerify(t, "other@example.com")

	body := map[string]any{
		"email":      "owner@example.com",
		"first_name": "Renamed",
		"last_name":  "Writer",
	}

	resp := ts.api.Post("/api/v1/users/"+owner.ID, bearer(other), body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/users/"+owner.ID, body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/users/"+owner.ID, bearer(owner), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Renamed")
}

func TestUpdateAuthorNicknameConflict(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.registerAndVerify(t, "first@example.com")
	second := ts.registerAndVerify(t, "second@example.com")

	body := map[string]any{"nickname": "inkwell", "social": map[string]any{}}

	resp := ts.api.Post("/api/v1/users/"+first.ID+"/author", bearer(first), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/users/"+second.ID+"/author", bearer(second), body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "nameExists")
}
