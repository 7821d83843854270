package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/id"
	"github.com/abdotaker608/golden-pens-api/internal/mail"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/store/sqlite"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// captureMailer records outbound messages instead of sending them.
type captureMailer struct {
	messages []*mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg *mail.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) last(t *testing.T) *mail.Message {
	t.Helper()
	require.NotEmpty(t, m.messages, "expected at least one email")
	return m.messages[len(m.messages)-1]
}

type testEnv struct {
	store      store.Store
	mailer     *captureMailer
	auth       *AuthService
	authorizer *Authorizer
	profiles   *ProfileService
	stories    *StoryService
	search     *SearchService
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		SimilarityThreshold: 0.1,
		TrendingWindow:      7 * 24 * time.Hour,
		PageSize:            9,
		RepliesPageSize:     6,
		AuthorsPageSize:     20,
		FeedLimit:           10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	key := bytes.Repeat([]byte{0x42}, 32)
	tokens, err := auth.NewTokenService(key, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	mailer := &captureMailer{}
	validator := validation.New()
	cfg := testSearchConfig()

	return &testEnv{
		store:      s,
		mailer:     mailer,
		auth:       NewAuthService(s, tokens, mailer, validator, logger, "http://frontend.test"),
		authorizer: NewAuthorizer(s),
		profiles:   NewProfileService(s, validator, logger, cfg),
		stories:    NewStoryService(s, validator, logger, cfg),
		search:     NewSearchService(s, cfg, logger),
	}
}

// seedUser creates a verified user with an author profile, bypassing the
// registration flow.
func seedUser(t *testing.T, env *testEnv, email string) *domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)
	token, err := auth.GenerateAccessToken()
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:            id.MustGenerate("user"),
		Email:         email,
		FirstName:     "Amina",
		LastName:      "Writer",
		PasswordHash:  hash,
		EmailVerified: true,
		AccessToken:   token,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, env.store.CreateUser(ctx, user))
	require.NoError(t, env.store.CreateAuthor(ctx, &domain.Author{UserID: user.ID}))
	return user
}

// seedStory creates a story directly in the store so tests control the
// creation time.
func seedStory(t *testing.T, env *testEnv, authorID, title string, createdAt time.Time) *domain.Story {
	t.Helper()

	story := &domain.Story{
		ID:        id.MustGenerate("story"),
		AuthorID:  authorID,
		Title:     title,
		Tags:      []string{},
		Category:  domain.CategoryNovel,
		CreatedAt: createdAt,
	}
	require.NoError(t, env.store.CreateStory(context.Background(), story))
	return story
}

func seedChapter(t *testing.T, env *testEnv, storyID string) *domain.Chapter {
	t.Helper()

	chapter := &domain.Chapter{
		ID:        id.MustGenerate("chapter"),
		StoryID:   storyID,
		Title:     "Chapter",
		Content:   "Once upon a time.",
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.store.CreateChapter(context.Background(), chapter))
	return chapter
}
