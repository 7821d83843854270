package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update account",
		Description: "Updates names and email. An email change is parked until confirmed from the new address.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-author",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/author",
		Summary:     "Update author profile",
		Description: "Updates the pen name and social links.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-security",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/security",
		Summary:     "Change password",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateSecurity)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete account",
		Description: "Deletes the account and everything it owns after a password confirmation.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteUser)
}

// === DTOs ===

// UpdateUserInput wraps the account update request for Huma.
type UpdateUserInput struct {
	ID            string `path:"id" doc:"User ID"`
	Authorization string `header:"Authorization"`
	Body          service.UpdateAccountRequest
}

// UpdateUserResponse reports the account update outcome.
type UpdateUserResponse struct {
	Message string          `json:"message" doc:"Status message"`
	Account AccountResponse `json:"account" doc:"Updated account"`
	// VerificationSent is true when an email change confirmation went out.
	VerificationSent bool `json:"verification_sent,omitempty"`
}

// UpdateUserOutput wraps the account update response for Huma.
type UpdateUserOutput struct {
	Body UpdateUserResponse
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
	user, err := s.authorize(ctx, input.Authorization, service.KindUser, input.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Auth.UpdateAccount(ctx, user, input.Body)
	if err != nil {
		return nil, err
	}
	return &UpdateUserOutput{Body: UpdateUserResponse{
		Message:          "saved",
		Account:          mapAccount(result.User),
		VerificationSent: result.VerificationSent,
	}}, nil
}

// UpdateAuthorInput wraps the author profile update request for Huma.
type UpdateAuthorInput struct {
	ID            string `path:"id" doc:"User ID"`
	Authorization string `header:"Authorization"`
	Body          service.UpdateAuthorRequest
}

// AuthorOutput wraps a single author payload for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindUser, input.ID); err != nil {
		return nil, err
	}

	author, err := s.services.Profiles.UpdateAuthor(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: mapAuthor(author, false)}, nil
}

// UpdateSecurityInput wraps the password change request for Huma.
type UpdateSecurityInput struct {
	ID            string `path:"id" doc:"User ID"`
	Authorization string `header:"Authorization"`
	Body          struct {
		CurrentPassword string `json:"current_password" validate:"required" doc:"Current password"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=1024" doc:"New password"`
	}
}

func (s *Server) handleUpdateSecurity(ctx context.Context, input *UpdateSecurityInput) (*MessageOutput, error) {
	user, err := s.authorize(ctx, input.Authorization, service.KindUser, input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.UpdateSecurity(ctx, user, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}

// DeleteUserInput wraps the account deletion request for Huma.
type DeleteUserInput struct {
	ID            string `path:"id" doc:"User ID"`
	Authorization string `header:"Authorization"`
	Body          struct {
		Password string `json:"password" validate:"required" doc:"Password confirmation"`
	}
}

func (s *Server) handleDeleteUser(ctx context.Context, input *DeleteUserInput) (*MessageOutput, error) {
	user, err := s.authorize(ctx, input.Authorization, service.KindUser, input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.DeleteAccount(ctx, user, input.Body.Password); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}
