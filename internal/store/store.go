// Package store defines the persistence interface and its error vocabulary.
package store

import (
	"context"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
)

// StoryFilter narrows the story candidate set before any scoring happens.
// All fields are optional; zero values mean "no restriction".
type StoryFilter struct {
	// AuthorID restricts to works owned by this author.
	AuthorID string
	// FollowerID restricts to works whose author is followed by this user.
	FollowerID string
	// Category is an exact-match filter.
	Category string
	// CreatedAfter restricts to stories created at or after this instant.
	CreatedAfter time.Time
}

// StoryRecord is a story joined with its author's display fields and
// aggregate engagement, as needed for listings and ranking.
type StoryRecord struct {
	domain.Story

	AuthorNickname  string
	AuthorFirstName string
	AuthorLastName  string

	Views   int
	Loves   int
	Replies int
}

// PenName returns the author name shown on story cards.
func (r *StoryRecord) PenName() string {
	if r.AuthorNickname != "" {
		return r.AuthorNickname
	}
	if r.AuthorFirstName == "" {
		return r.AuthorLastName
	}
	if r.AuthorLastName == "" {
		return r.AuthorFirstName
	}
	return r.AuthorFirstName + " " + r.AuthorLastName
}

// AuthorRecord is an author profile joined with the owning user's
// display fields.
type AuthorRecord struct {
	domain.Author

	FirstName string
	LastName  string
	Picture   string
}

// FullName returns the author's user full name.
func (r *AuthorRecord) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// ReplyRecord is a reply joined with the commenting user's display fields.
type ReplyRecord struct {
	domain.Reply

	FirstName string
	LastName  string
	Picture   string
}

// Store is the persistence interface used by the service layer.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserBySocialID(ctx context.Context, socialID string) (*domain.User, error)
	GetUserByAccessToken(ctx context.Context, token string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	// Authors
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, userID string) (*AuthorRecord, error)
	GetAuthorByNickname(ctx context.Context, nickname string) (*AuthorRecord, error)
	UpdateAuthor(ctx context.Context, author *domain.Author) error
	ListAuthors(ctx context.Context) ([]*AuthorRecord, error)
	ToggleFollow(ctx context.Context, authorID, followerID string) (following bool, err error)
	IsFollowing(ctx context.Context, authorID, followerID string) (bool, error)

	// Stories
	CreateStory(ctx context.Context, story *domain.Story) error
	GetStory(ctx context.Context, id string) (*StoryRecord, error)
	UpdateStory(ctx context.Context, story *domain.Story) error
	DeleteStory(ctx context.Context, id string) error
	FindStories(ctx context.Context, filter StoryFilter) ([]*StoryRecord, error)
	GetStoryStats(ctx context.Context, storyID string) (*domain.StoryStats, error)

	// Chapters
	CreateChapter(ctx context.Context, chapter *domain.Chapter) error
	GetChapter(ctx context.Context, id string) (*domain.Chapter, error)
	GetChapterByNumber(ctx context.Context, storyID string, number int) (*domain.Chapter, error)
	ListChapters(ctx context.Context, storyID, viewerID string) ([]*domain.Chapter, error)
	UpdateChapter(ctx context.Context, chapter *domain.Chapter) error
	DeleteChapter(ctx context.Context, id string) error
	ToggleLove(ctx context.Context, chapterID, userID string) (loved bool, err error)
	HasLoved(ctx context.Context, chapterID, userID string) (bool, error)
	AddView(ctx context.Context, chapterID, address string) error

	// Replies
	CreateReply(ctx context.Context, reply *domain.Reply) error
	GetReply(ctx context.Context, id string) (*domain.Reply, error)
	ListReplies(ctx context.Context, chapterID string, offset, limit int) ([]*ReplyRecord, int, error)
	UpdateReply(ctx context.Context, reply *domain.Reply) error
	DeleteReply(ctx context.Context, id string) error

	// Reports
	CreateReport(ctx context.Context, report *domain.Report) error

	Close() error
}
