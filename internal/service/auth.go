package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/id"
	"github.com/abdotaker608/golden-pens-api/internal/mail"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// AuthService handles registration, login, email verification, password
// resets, and account-level settings.
type AuthService struct {
	store       store.Store
	tokens      *auth.TokenService
	mailer      mail.Mailer
	validator   *validation.Validator
	logger      *slog.Logger
	frontendURL string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	s store.Store,
	tokens *auth.TokenService,
	mailer mail.Mailer,
	validator *validation.Validator,
	logger *slog.Logger,
	frontendURL string,
) *AuthService {
	return &AuthService{
		store:       s,
		tokens:      tokens,
		mailer:      mailer,
		validator:   validator,
		logger:      logger,
		frontendURL: frontendURL,
	}
}

// RegisterRequest contains registration data. Provider signups carry a
// SocialID and no password.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"omitempty,min=8,max=1024"`
	FirstName    string `json:"first_name" validate:"required,max=50"`
	LastName     string `json:"last_name" validate:"required,max=50"`
	WithProvider bool   `json:"withProvider"`
	SocialID     string `json:"social_id,omitempty"`
	SocialPicture string `json:"social_picture,omitempty"`
}

// LoginRequest contains login credentials. Provider logins auto-create a
// verified account on first sight.
type LoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password"`
	WithProvider bool   `json:"withProvider"`
	SocialID     string `json:"social_id,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	SocialPicture string `json:"social_picture,omitempty"`
}

// RegisterResult reports what happened to a registration: provider signups
// come back logged in, password signups wait for email verification.
type RegisterResult struct {
	User *domain.User
	// VerificationSent is true when a verification email went out and the
	// account is not yet usable.
	VerificationSent bool
	// SessionToken is issued for provider signups, which come back logged in.
	SessionToken string
}

// newUser assembles a user with fresh ID and canonical access token.
func newUser(email, firstName, lastName string) (*domain.User, error) {
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}
	accessToken, err := auth.GenerateAccessToken()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	now := time.Now()
	return &domain.User{
		ID:          userID,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		AccessToken: accessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// createAccount persists a user together with its author profile.
func (s *AuthService) createAccount(ctx context.Context, user *domain.User) error {
	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Conflict("emailExists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	if err := s.store.CreateAuthor(ctx, &domain.Author{UserID: user.ID}); err != nil {
		return fmt.Errorf("create author profile: %w", err)
	}
	return nil
}

// Register creates a new account. Password signups get a verification email
// and cannot log in until the address is confirmed; provider signups are
// verified immediately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.WithProvider && req.Password == "" {
		return nil, domainerrors.Validation("password is required")
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.Conflict("emailExists")
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user, err := newUser(req.Email, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	if req.WithProvider {
		user.SocialID = req.SocialID
		user.SocialPicture = req.SocialPicture
		user.EmailVerified = true
		if err := s.createAccount(ctx, user); err != nil {
			return nil, err
		}
		login, err := s.finishLogin(user)
		if err != nil {
			return nil, err
		}
		s.logger.Info("user registered with provider", "user_id", user.ID)
		return &RegisterResult{User: user, SessionToken: login.SessionToken}, nil
	}

	user.PasswordHash, err = auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.createAccount(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerificationMail(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered, verification pending", "user_id", user.ID)
	return &RegisterResult{User: user, VerificationSent: true}, nil
}

// sendVerificationMail emails a purpose-bound verification link.
func (s *AuthService) sendVerificationMail(ctx context.Context, user *domain.User) error {
	token, err := s.tokens.GenerateActionToken(auth.PurposeVerifyEmail, user.ID, nil)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	msg, err := mail.VerificationEmail(user.Email, user.FullName(), s.frontendURL+"/verify/"+token)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

// LoginResult carries the authenticated user and a long-lived session token
// the client may store to skip the login form.
type LoginResult struct {
	User         *domain.User
	SessionToken string
}

// Login authenticates credentials or a provider identity.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.WithProvider {
		return s.loginWithProvider(ctx, req)
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalidCredits")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// Provider-linked accounts have no usable password.
	if user.WithProvider() {
		return nil, domainerrors.InvalidCredentials("invalidCredits")
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalidCredits")
	}

	if !user.EmailVerified {
		return nil, domainerrors.Forbidden("verifyRequired")
	}
	if user.Suspended {
		return nil, domainerrors.Forbidden("suspended")
	}

	return s.finishLogin(user)
}

// loginWithProvider signs a provider identity in, creating a verified
// account on first sight.
func (s *AuthService) loginWithProvider(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err == nil {
		if !user.WithProvider() {
			return nil, domainerrors.InvalidCredentials("invalidCredits")
		}
		if user.Suspended {
			return nil, domainerrors.Forbidden("suspended")
		}
		return s.finishLogin(user)
	}
	if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err = newUser(req.Email, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	user.SocialID = req.SocialID
	user.SocialPicture = req.SocialPicture
	user.EmailVerified = true

	if err := s.createAccount(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("provider account auto-created", "user_id", user.ID)
	return s.finishLogin(user)
}

// finishLogin issues the remember-me session token.
func (s *AuthService) finishLogin(user *domain.User) (*LoginResult, error) {
	session, err := s.tokens.GenerateActionToken(auth.PurposeSession, user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	return &LoginResult{User: user, SessionToken: session}, nil
}

// AuthenticateSession resolves a stored session token back to its user.
func (s *AuthService) AuthenticateSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyActionToken(token, auth.PurposeSession)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}
	if user.Suspended {
		return nil, domainerrors.Forbidden("suspended")
	}
	return user, nil
}

// AuthenticateAccessToken resolves a canonical bearer token to its user.
// Used by the auth middleware.
func (s *AuthService) AuthenticateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.store.GetUserByAccessToken(ctx, token)
	if err != nil {
		return nil, domainerrors.Unauthorized("unauthorized")
	}
	if user.Suspended {
		return nil, domainerrors.Forbidden("suspended")
	}
	return user, nil
}

// VerifyEmail confirms a user's address from a verification link.
// A token for an already-verified or suspended account is rejected.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyActionToken(token, auth.PurposeVerifyEmail)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}
	if user.Suspended || user.EmailVerified {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("email verified", "user_id", user.ID)
	return user, nil
}

// ConfirmEmailChange applies a pending email change from a confirmation link.
func (s *AuthService) ConfirmEmailChange(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyActionToken(token, auth.PurposeEmailChange)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}
	// The token must carry the address still pending on the account.
	if user.TempEmail == "" || user.TempEmail != claims.Email {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user.Email = user.TempEmail
	user.TempEmail = ""
	user.UpdatedAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("emailExists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("email change confirmed", "user_id", user.ID)
	return user, nil
}

// RequestPasswordReset emails a single-use reset link, honoring at most one
// request per day per account. Unknown, provider-linked, and unverified
// addresses all report the same emailNotExist error.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return domainerrors.Validation("emailNotExist")
	}
	if user.WithProvider() || !user.EmailVerified {
		return domainerrors.Validation("emailNotExist")
	}

	now := time.Now()
	if !user.ResetRequestAllowed(now) {
		return domainerrors.RateLimited("waitResetAllow")
	}

	token, err := s.tokens.GenerateActionToken(auth.PurposeResetPassword, user.ID, nil)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	// Only the latest issued token completes a reset.
	user.CurrentResetToken = token
	user.LastPasswordReset = &now
	user.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	msg, err := mail.ResetEmail(user.Email, user.FullName(), s.frontendURL+"/reset/"+token)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return domainerrors.Validation("emailNotExist").WithCause(err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// CompletePasswordReset sets a new password from a reset link. The token is
// single-use: completing or re-requesting a reset invalidates it.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) (*domain.User, error) {
	claims, err := s.tokens.VerifyActionToken(token, auth.PurposeResetPassword)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		return nil, domainerrors.Unauthorized("invalidToken")
	}
	if user.CurrentResetToken != token {
		return nil, domainerrors.Unauthorized("invalidToken")
	}

	user.PasswordHash, err = auth.HashPassword(newPassword)
	if err != nil {
		return nil, domainerrors.Validation("password is invalid").WithCause(err)
	}

	user.CurrentResetToken = ""
	user.UpdatedAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)
	return user, nil
}

// UpdateAccountRequest contains account settings updates. Changing the email
// triggers a confirmation mail to the new address.
type UpdateAccountRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
}

// UpdateAccountResult reports whether an email confirmation went out.
type UpdateAccountResult struct {
	User             *domain.User
	VerificationSent bool
}

// UpdateAccount updates names and, when the email changed, starts the
// confirmed email change flow. Provider-linked accounts cannot change their
// email or names here; the provider owns those.
func (s *AuthService) UpdateAccount(ctx context.Context, user *domain.User, req UpdateAccountRequest) (*UpdateAccountResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if user.WithProvider() {
		return nil, domainerrors.Unauthorized("unauthorized")
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UpdatedAt = time.Now()

	verificationSent := false
	if req.Email != user.Email {
		if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
			return nil, domainerrors.Conflict("emailExists")
		} else if !domainerrors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup email: %w", err)
		}

		token, err := s.tokens.GenerateActionToken(auth.PurposeEmailChange, user.ID,
			map[string]string{"email": req.Email})
		if err != nil {
			return nil, fmt.Errorf("generate email change token: %w", err)
		}
		msg, err := mail.EmailChangeEmail(req.Email, user.FullName(), s.frontendURL+"/verifyC/"+token)
		if err != nil {
			return nil, err
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("send email change mail: %w", err)
		}

		user.TempEmail = req.Email
		verificationSent = true
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &UpdateAccountResult{User: user, VerificationSent: verificationSent}, nil
}

// UpdateSecurity changes the password after checking the current one.
// Provider-linked accounts are rejected.
func (s *AuthService) UpdateSecurity(ctx context.Context, user *domain.User, currentPassword, newPassword string) error {
	if user.WithProvider() {
		return domainerrors.Unauthorized("unauthorized")
	}
	if len(newPassword) < 8 {
		return domainerrors.Validation("password must be at least 8 characters")
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, currentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.Unauthorized("incorrectPassword")
	}

	user.PasswordHash, err = auth.HashPassword(newPassword)
	if err != nil {
		return domainerrors.Validation("password is invalid").WithCause(err)
	}

	user.UpdatedAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// DeleteAccount removes a user after a password confirmation. Everything
// the user owns goes with the account.
func (s *AuthService) DeleteAccount(ctx context.Context, user *domain.User, password string) error {
	valid, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.Unauthorized("unauthorized")
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("account deleted", "user_id", user.ID)
	return nil
}
