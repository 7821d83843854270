package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new account",
		Description: "Creates a new account. Password signups must verify their email before logging in; provider signups are logged in immediately.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Authenticates credentials or a provider identity and returns the account with its access token.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "session",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/session",
		Summary:     "Resume session",
		Description: "Exchanges a stored remember-me session token for the account.",
		Tags:        []string{"Authentication"},
	}, s.handleSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-email",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/verify-email",
		Summary:     "Verify email address",
		Tags:        []string{"Authentication"},
	}, s.handleVerifyEmail)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirm-email",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/confirm-email",
		Summary:     "Confirm email change",
		Description: "Applies a pending email change from the confirmation link sent to the new address.",
		Tags:        []string{"Authentication"},
	}, s.handleConfirmEmail)

	huma.Register(s.api, huma.Operation{
		OperationID: "request-reset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/request-reset",
		Summary:     "Request password reset",
		Tags:        []string{"Authentication"},
	}, s.handleRequestReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "complete-reset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/complete-reset",
		Summary:     "Complete password reset",
		Tags:        []string{"Authentication"},
	}, s.handleCompleteReset)
}

// === DTOs ===

// AccountResponse is the account payload returned by auth endpoints.
// It is the only place the canonical access token is serialized.
type AccountResponse struct {
	ID            string    `json:"id" doc:"User ID"`
	Email         string    `json:"email" doc:"Email address"`
	FirstName     string    `json:"first_name" doc:"First name"`
	LastName      string    `json:"last_name" doc:"Last name"`
	Picture       string    `json:"picture,omitempty" doc:"Profile picture URL"`
	SocialPicture string    `json:"social_picture,omitempty" doc:"Provider profile picture URL"`
	Cover         string    `json:"cover,omitempty" doc:"Cover image URL"`
	EmailVerified bool      `json:"email_verified" doc:"Whether the email is verified"`
	WithProvider  bool      `json:"withProvider" doc:"Whether the account is provider-linked"`
	AccessToken   string    `json:"access_token" doc:"Canonical bearer token"`
	Joined        time.Time `json:"joined" doc:"Registration timestamp"`
}

func mapAccount(u *domain.User) AccountResponse {
	return AccountResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Picture:       u.Picture,
		SocialPicture: u.SocialPicture,
		Cover:         u.Cover,
		EmailVerified: u.EmailVerified,
		WithProvider:  u.WithProvider(),
		AccessToken:   u.AccessToken,
		Joined:        u.CreatedAt,
	}
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body service.RegisterRequest
}

// RegisterResponse reports the registration outcome. Account and session are
// only present for provider signups, which skip email verification.
type RegisterResponse struct {
	Message      string           `json:"message" doc:"Status message"`
	Account      *AccountResponse `json:"account,omitempty" doc:"Created account (provider signups only)"`
	SessionToken string           `json:"session_token,omitempty" doc:"Remember-me token (provider signups only)"`
}

// RegisterOutput wraps the registration response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	result, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	out := &RegisterOutput{Body: RegisterResponse{Message: "userCreated"}}
	if !result.VerificationSent {
		account := mapAccount(result.User)
		out.Body.Account = &account
		out.Body.SessionToken = result.SessionToken
	}
	return out, nil
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// AuthResponse carries the account and its remember-me token.
type AuthResponse struct {
	Account      AccountResponse `json:"account" doc:"Authenticated account"`
	SessionToken string          `json:"session_token" doc:"Remember-me session token"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	result, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: AuthResponse{
		Account:      mapAccount(result.User),
		SessionToken: result.SessionToken,
	}}, nil
}

// TokenInput wraps a single action or session token.
type TokenInput struct {
	Body struct {
		Token string `json:"token" validate:"required" doc:"Signed token"`
	}
}

// AccountOutput wraps a bare account payload for Huma.
type AccountOutput struct {
	Body AccountResponse
}

func (s *Server) handleSession(ctx context.Context, input *TokenInput) (*AccountOutput, error) {
	user, err := s.services.Auth.AuthenticateSession(ctx, input.Body.Token)
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: mapAccount(user)}, nil
}

func (s *Server) handleVerifyEmail(ctx context.Context, input *TokenInput) (*AccountOutput, error) {
	user, err := s.services.Auth.VerifyEmail(ctx, input.Body.Token)
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: mapAccount(user)}, nil
}

func (s *Server) handleConfirmEmail(ctx context.Context, input *TokenInput) (*AccountOutput, error) {
	user, err := s.services.Auth.ConfirmEmailChange(ctx, input.Body.Token)
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: mapAccount(user)}, nil
}

// RequestResetInput wraps the reset request for Huma.
type RequestResetInput struct {
	Body struct {
		Email string `json:"email" validate:"required,email" doc:"Account email"`
	}
}

// MessageResponse contains a simple status message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func (s *Server) handleRequestReset(ctx context.Context, input *RequestResetInput) (*MessageOutput, error) {
	if err := s.services.Auth.RequestPasswordReset(ctx, input.Body.Email); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "recoverPasswordSent"}}, nil
}

// CompleteResetInput wraps the reset completion request for Huma.
type CompleteResetInput struct {
	Body struct {
		Token    string `json:"token" validate:"required" doc:"Reset token from the email link"`
		Password string `json:"password" validate:"required,min=8,max=1024" doc:"New password"`
	}
}

func (s *Server) handleCompleteReset(ctx context.Context, input *CompleteResetInput) (*MessageOutput, error) {
	if _, err := s.services.Auth.CompletePasswordReset(ctx, input.Body.Token, input.Body.Password); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}
