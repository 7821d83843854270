package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile/{id}",
		Summary:     "Get public profile",
		Description: "Returns the user's public profile. Authenticated viewers also learn whether they follow the author.",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-media",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/media",
		Summary:     "Update profile media",
		Description: "Sets the profile picture and cover image of the authenticated user.",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-authors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "Browse the author directory",
		Description: "Without a search the directory lists authors by follower count. A search matches names fuzzily and only returns authors with published work.",
		Tags:        []string{"Profiles"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-follow",
		Method:      http.MethodPost,
		Path:        "/api/v1/follow",
		Summary:     "Follow or unfollow an author",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleFollow)
}

// === DTOs ===

// AuthorResponse is the public author payload.
type AuthorResponse struct {
	UserID        string             `json:"user_id" doc:"Owning user ID"`
	Nickname      string             `json:"nickname,omitempty" doc:"Pen name"`
	FullName      string             `json:"full_name" doc:"User full name"`
	Picture       string             `json:"picture,omitempty" doc:"Profile picture URL"`
	Social        domain.SocialLinks `json:"social" doc:"Public profile links"`
	FollowerCount int                `json:"followers_count" doc:"Number of followers"`
	StoryCount    int                `json:"stories_no" doc:"Number of published stories"`
	InFollowers   bool               `json:"inFollowers" doc:"Whether the viewer follows this author"`
}

func mapAuthor(a *store.AuthorRecord, inFollowers bool) AuthorResponse {
	return AuthorResponse{
		UserID:        a.UserID,
		Nickname:      a.Nickname,
		FullName:      a.FullName(),
		Picture:       a.Picture,
		Social:        a.Social,
		FollowerCount: a.FollowerCount,
		StoryCount:    a.StoryCount,
		InFollowers:   inFollowers,
	}
}

// ProfileInput identifies the profile to load.
type ProfileInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ProfileResponse is the full public profile page payload.
type ProfileResponse struct {
	User        ProfileUser    `json:"user" doc:"Public user fields"`
	Author      AuthorResponse `json:"author" doc:"Author profile"`
	InFollowers bool           `json:"inFollowers" doc:"Whether the viewer follows this author"`
}

// ProfileUser is the public subset of a user shown on profile pages.
type ProfileUser struct {
	ID        string `json:"id" doc:"User ID"`
	FirstName string `json:"first_name" doc:"First name"`
	LastName  string `json:"last_name" doc:"Last name"`
	Picture   string `json:"picture,omitempty" doc:"Profile picture URL"`
	Cover     string `json:"cover,omitempty" doc:"Cover image URL"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

func (s *Server) handleGetProfile(ctx context.Context, input *ProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profiles.GetProfile(ctx, input.ID, currentUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: ProfileResponse{
		User: ProfileUser{
			ID:        profile.User.ID,
			FirstName: profile.User.FirstName,
			LastName:  profile.User.LastName,
			Picture:   profile.User.Picture,
			Cover:     profile.User.Cover,
		},
		Author:      mapAuthor(profile.Author, profile.InFollowers),
		InFollowers: profile.InFollowers,
	}}, nil
}

// UpdateMediaInput wraps the profile media request for Huma.
type UpdateMediaInput struct {
	Body service.UpdateMediaRequest
}

func (s *Server) handleUpdateMedia(ctx context.Context, input *UpdateMediaInput) (*AccountOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Profiles.UpdateMedia(ctx, user, input.Body)
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: mapAccount(updated)}, nil
}

// ListAuthorsInput holds the author directory query parameters.
type ListAuthorsInput struct {
	Search string `query:"search" doc:"Fuzzy name search"`
	Page   int    `query:"p" doc:"1-based page"`
}

// AuthorsPageResponse is one page of the author directory.
type AuthorsPageResponse struct {
	Results []AuthorResponse `json:"results" doc:"Page of authors"`
	Total   int              `json:"total" doc:"Total number of pages"`
}

// AuthorsPageOutput wraps the directory page for Huma.
type AuthorsPageOutput struct {
	Body AuthorsPageResponse
}

func (s *Server) handleListAuthors(ctx context.Context, input *ListAuthorsInput) (*AuthorsPageOutput, error) {
	page, err := s.services.Profiles.ListAuthors(ctx, service.ListAuthorsRequest{
		Search:   input.Search,
		ViewerID: currentUserID(ctx),
		Page:     input.Page,
	})
	if err != nil {
		return nil, err
	}

	results := make([]AuthorResponse, len(page.Results))
	for i, entry := range page.Results {
		results[i] = mapAuthor(entry.AuthorRecord, entry.InFollowers)
	}
	return &AuthorsPageOutput{Body: AuthorsPageResponse{Results: results, Total: page.Total}}, nil
}

// ToggleFollowInput wraps the follow toggle request for Huma.
type ToggleFollowInput struct {
	Body struct {
		AuthorID string `json:"author" validate:"required" doc:"Author user ID"`
	}
}

// ToggleFollowOutput wraps the follow toggle response for Huma.
type ToggleFollowOutput struct {
	Body service.FollowResult
}

func (s *Server) handleToggleFollow(ctx context.Context, input *ToggleFollowInput) (*ToggleFollowOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Profiles.ToggleFollow(ctx, input.Body.AuthorID, user.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleFollowOutput{Body: *result}, nil
}
