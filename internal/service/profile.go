package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/search"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// ProfileService manages public author profiles: the profile page, the
// author directory, profile media, and the follow relation.
type ProfileService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	cfg       config.SearchConfig
}

// NewProfileService creates a new profile service.
func NewProfileService(s store.Store, validator *validation.Validator, logger *slog.Logger, cfg config.SearchConfig) *ProfileService {
	return &ProfileService{store: s, validator: validator, logger: logger, cfg: cfg}
}

// Profile is a public profile view, optionally annotated with the viewer's
// follow state.
type Profile struct {
	User   *domain.User        `json:"user"`
	Author *store.AuthorRecord `json:"author"`
	// InFollowers reports whether the viewer follows this author.
	InFollowers bool `json:"inFollowers"`
}

// GetProfile loads a user's public profile. viewerID may be empty for
// anonymous visitors.
func (s *ProfileService) GetProfile(ctx context.Context, userID, viewerID string) (*Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	author, err := s.store.GetAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}

	profile := &Profile{User: user, Author: author}
	if viewerID != "" && viewerID != userID {
		profile.InFollowers, err = s.store.IsFollowing(ctx, userID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}
	return profile, nil
}

// UpdateAuthorRequest contains public profile updates.
type UpdateAuthorRequest struct {
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
	Social   struct {
		Facebook  string `json:"fb" validate:"omitempty,fb_profile"`
		Instagram string `json:"insta" validate:"omitempty,insta_profile"`
		Twitter   string `json:"twitter" validate:"omitempty,twitter_profile"`
	} `json:"social"`
}

// UpdateAuthor updates the pen name and social links. Nicknames are unique
// across authors.
func (s *ProfileService) UpdateAuthor(ctx context.Context, userID string, req UpdateAuthorRequest) (*store.AuthorRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	author, err := s.store.GetAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}

	author.Nickname = req.Nickname
	author.Social = domain.SocialLinks{
		Facebook:  req.Social.Facebook,
		Instagram: req.Social.Instagram,
		Twitter:   req.Social.Twitter,
	}

	if err := s.store.UpdateAuthor(ctx, &author.Author); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("nameExists")
		}
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.logger.Info("author profile updated", "user_id", userID)
	return author, nil
}

// UpdateMediaRequest carries new profile imagery. Empty fields are left
// unchanged.
type UpdateMediaRequest struct {
	Picture string `json:"picture" validate:"omitempty,url"`
	Cover   string `json:"cover" validate:"omitempty,url"`
}

// UpdateMedia sets the profile picture and cover image.
func (s *ProfileService) UpdateMedia(ctx context.Context, user *domain.User, req UpdateMediaRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Picture != "" {
		user.Picture = req.Picture
	}
	if req.Cover != "" {
		user.Cover = req.Cover
	}
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// FollowResult reports whether a toggle was applied and the resulting state.
type FollowResult struct {
	// Success is false when the toggle was refused (self-follow).
	Success bool `json:"success"`
	// Following is the state after the toggle.
	Following bool `json:"following,omitempty"`
}

// ToggleFollow follows the author if not yet followed, otherwise unfollows.
// Following yourself is refused without error.
func (s *ProfileService) ToggleFollow(ctx context.Context, authorID, followerID string) (*FollowResult, error) {
	if authorID == followerID {
		return &FollowResult{Success: false}, nil
	}

	if _, err := s.store.GetAuthor(ctx, authorID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	following, err := s.store.ToggleFollow(ctx, authorID, followerID)
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}
	return &FollowResult{Success: true, Following: following}, nil
}

// ListAuthorsRequest holds the author directory parameters.
type ListAuthorsRequest struct {
	// Search scores authors by name; empty lists everyone by popularity.
	Search string
	// ViewerID annotates each entry with the viewer's follow state.
	ViewerID string
	// Page is 1-based.
	Page int
}

// AuthorEntry is one row of the author directory.
type AuthorEntry struct {
	*store.AuthorRecord
	// InFollowers reports whether the viewer follows this author.
	InFollowers bool `json:"inFollowers"`
}

// AuthorsPage is one directory page plus the total page count.
type AuthorsPage struct {
	Results []*AuthorEntry
	// Total is the number of pages, not rows.
	Total int
}

// ListAuthors pages through the author directory. With a search query it
// matches names by trigram similarity and only keeps authors with published
// work, ordered best match first; without one it lists everyone, most
// followed first.
func (s *ProfileService) ListAuthors(ctx context.Context, req ListAuthorsRequest) (*AuthorsPage, error) {
	// The store orders by follower count already.
	records, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	// Page count reflects the unfiltered directory size.
	total := (len(records) + s.cfg.AuthorsPageSize - 1) / s.cfg.AuthorsPageSize
	if total == 0 {
		total = 1
	}

	if req.Search != "" {
		records = s.matchAuthors(records, req.Search)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * s.cfg.AuthorsPageSize
	if start > len(records) {
		start = len(records)
	}
	end := start + s.cfg.AuthorsPageSize
	if end > len(records) {
		end = len(records)
	}

	results := make([]*AuthorEntry, 0, end-start)
	for _, r := range records[start:end] {
		entry := &AuthorEntry{AuthorRecord: r}
		if req.ViewerID != "" {
			entry.InFollowers, err = s.store.IsFollowing(ctx, r.UserID, req.ViewerID)
			if err != nil {
				return nil, fmt.Errorf("check follow: %w", err)
			}
		}
		results = append(results, entry)
	}

	return &AuthorsPage{Results: results, Total: total}, nil
}

// matchAuthors keeps authors whose full name or nickname is similar to the
// query and who have at least one story, best match first.
func (s *ProfileService) matchAuthors(records []*store.AuthorRecord, query string) []*store.AuthorRecord {
	type match struct {
		record *store.AuthorRecord
		score  float64
	}

	matches := make([]match, 0, len(records))
	for _, r := range records {
		if r.StoryCount < 1 {
			continue
		}
		score := search.Greatest(
			search.Similarity(r.FullName(), query),
			search.Similarity(r.Nickname, query),
		)
		if score >= s.cfg.SimilarityThreshold {
			matches = append(matches, match{record: r, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]*store.AuthorRecord, len(matches))
	for i, m := range matches {
		out[i] = m.record
	}
	return out
}
