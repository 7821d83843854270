package api

import (
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth       *service.AuthService
	Profiles   *service.ProfileService
	Stories    *service.StoryService
	Search     *service.SearchService
	Authorizer *service.Authorizer
}
