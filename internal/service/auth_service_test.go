package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
)

// tokenFromLink pulls the trailing token out of an emailed action link.
func tokenFromLink(t *testing.T, html, marker string) string {
	t.Helper()
	idx := strings.Index(html, marker)
	require.NotEqual(t, -1, idx, "link %q not found in email", marker)
	rest := html[idx+len(marker):]
	end := strings.IndexAny(rest, `"<`)
	require.NotEqual(t, -1, end)
	return rest[:end]
}

func TestRegisterAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterRequest{
		Email:     "new@example.com",
		Password:  "secret-password",
		FirstName: "Nour",
		LastName:  "Writer",
	})
	require.NoError(t, err)
	assert.True(t, result.VerificationSent)
	assert.False(t, result.User.EmailVerified)
	assert.Len(t, result.User.AccessToken, 40)

	// Unverified accounts cannot log in yet.
	_, err = env.auth.Login(ctx, LoginRequest{Email: "new@example.com", Password: "secret-password"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "verifyRequired", domainErr.Message)

	token := tokenFromLink(t, env.mailer.last(t).HTML, "/verify/")
	user, err := env.auth.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	// The same token is useless once verified.
	_, err = env.auth.VerifyEmail(ctx, token)
	assert.Error(t, err)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "new@example.com", Password: "secret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.SessionToken)

	session, err := env.auth.AuthenticateSession(ctx, login.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "taken@example.com")

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:     "Taken@Example.com",
		Password:  "secret-password",
		FirstName: "Nour",
		LastName:  "Writer",
	})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "emailExists", domainErr.Message)
}

func TestRegisterWithProvider(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "oauth@example.com",
		FirstName:    "Nour",
		LastName:     "Writer",
		WithProvider: true,
		SocialID:     "google-123",
	})
	require.NoError(t, err)
	assert.False(t, result.VerificationSent)
	assert.True(t, result.User.EmailVerified)
	assert.NotEmpty(t, result.SessionToken, "provider signups come back logged in")
	assert.Empty(t, env.mailer.messages)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "writer@example.com")

	for name, req := range map[string]LoginRequest{
		"wrong password": {Email: "writer@example.com", Password: "wrong"},
		"unknown email":  {Email: "ghost@example.com", Password: "secret-password"},
	} {
		_, err := env.auth.Login(ctx, req)
		var domainErr *domainerrors.Error
		require.ErrorAs(t, err, &domainErr, name)
		assert.Equal(t, "invalidCredits", domainErr.Message, name)
	}
}

func TestLoginSuspended(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := seedUser(t, env, "banned@example.com")
	user.Suspended = true
	require.NoError(t, env.store.UpdateUser(ctx, user))

	_, err := env.auth.Login(ctx, LoginRequest{Email: "banned@example.com", Password: "secret-password"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "suspended", domainErr.Message)
}

func TestProviderLoginAutoCreates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	login, err := env.auth.Login(ctx, LoginRequest{
		Email:        "fresh@example.com",
		WithProvider: true,
		SocialID:     "google-456",
		FirstName:    "Sami",
		LastName:     "Reader",
	})
	require.NoError(t, err)
	assert.True(t, login.User.EmailVerified)

	again, err := env.auth.Login(ctx, LoginRequest{Email: "fresh@example.com", WithProvider: true, SocialID: "google-456"})
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, again.User.ID)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env, "writer@example.com")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))

	// A second request inside the daily window is refused.
	err := env.auth.RequestPasswordReset(ctx, user.Email)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "waitResetAllow", domainErr.Message)

	token := tokenFromLink(t, env.mailer.last(t).HTML, "/reset/")
	_, err = env.auth.CompletePasswordReset(ctx, token, "brand-new-password")
	require.NoError(t, err)

	// The token is spent.
	_, err = env.auth.CompletePasswordReset(ctx, token, "another-password")
	assert.Error(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: user.Email, Password: "secret-password"})
	assert.Error(t, err, "old password should no longer work")
	_, err = env.auth.Login(ctx, LoginRequest{Email: user.Email, Password: "brand-new-password"})
	assert.NoError(t, err)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.auth.RequestPasswordReset(context.Background(), "nobody@example.com")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "emailNotExist", domainErr.Message)
}

func TestUpdateAccountEmailChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env, "old@example.com")

	result, err := env.auth.UpdateAccount(ctx, user, UpdateAccountRequest{
		Email:     "new@example.com",
		FirstName: "Amina",
		LastName:  "Writer",
	})
	require.NoError(t, err)
	assert.True(t, result.VerificationSent)
	assert.Equal(t, "old@example.com", result.User.Email, "email changes only after confirmation")
	assert.Equal(t, "new@example.com", result.User.TempEmail)

	msg := env.mailer.last(t)
	assert.Equal(t, "new@example.com", msg.To, "confirmation goes to the new address")

	token := tokenFromLink(t, msg.HTML, "/verifyC/")
	updated, err := env.auth.ConfirmEmailChange(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Empty(t, updated.TempEmail)
}

func TestUpdateSecurity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env, "writer@example.com")

	err := env.auth.UpdateSecurity(ctx, user, "wrong-password", "brand-new-password")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "incorrectPassword", domainErr.Message)

	require.NoError(t, env.auth.UpdateSecurity(ctx, user, "secret-password", "brand-new-password"))

	_, err = env.auth.Login(ctx, LoginRequest{Email: user.Email, Password: "brand-new-password"})
	assert.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env, "writer@example.com")

	err := env.auth.DeleteAccount(ctx, user, "wrong-password")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	require.NoError(t, env.auth.DeleteAccount(ctx, user, "secret-password"))

	_, err = env.store.GetUser(ctx, user.ID)
	assert.Error(t, err)
}
