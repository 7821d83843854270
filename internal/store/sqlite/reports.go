package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// CreateReport files a plagiarism report against a story.
// Returns store.ErrNotFound if the story or user does not exist.
func (s *Store) CreateReport(ctx context.Context, report *domain.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, user_id, story_id, original, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.UserID,
		report.StoryID,
		report.Original,
		nullString(report.Comment),
		formatTime(time.Now()),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithMessage("story not found")
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}
