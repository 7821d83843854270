package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser creates a user with an author profile and returns the user.
func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	now := time.Now()
	u := &domain.User{
		ID:            id.MustGenerate("user"),
		Email:         email,
		FirstName:     "Test",
		LastName:      "Writer",
		EmailVerified: true,
		AccessToken:   id.MustGenerate("access"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateAuthor(context.Background(), &domain.Author{UserID: u.ID}); err != nil {
		t.Fatalf("create author: %v", err)
	}
	return u
}

// seedStory creates a story owned by the given author.
func seedStory(t *testing.T, s *Store, authorID, title string) *domain.Story {
	t.Helper()
	story := &domain.Story{
		ID:        id.MustGenerate("story"),
		AuthorID:  authorID,
		Title:     title,
		Category:  domain.CategoryNovel,
		Tags:      []string{"adventure"},
		CreatedAt: time.Now(),
	}
	if err := s.CreateStory(context.Background(), story); err != nil {
		t.Fatalf("create story: %v", err)
	}
	return story
}

// seedChapter creates a chapter on the given story.
func seedChapter(t *testing.T, s *Store, storyID, title string) *domain.Chapter {
	t.Helper()
	c := &domain.Chapter{
		ID:        id.MustGenerate("chapter"),
		StoryID:   storyID,
		Title:     title,
		Content:   "Once upon a time.",
		CreatedAt: time.Now(),
	}
	if err := s.CreateChapter(context.Background(), c); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	return c
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "authors", "follows", "stories", "chapters",
		"chapter_loves", "chapter_views", "replies", "reports",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}
