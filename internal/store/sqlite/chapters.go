package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// chapterColumns selects a chapter with its engagement counts.
// Must match the scan order in scanChapter.
const chapterColumns = `c.id, c.story_id, c.title, c.content, c.number, c.created_at,
	(SELECT COUNT(*) FROM chapter_loves l WHERE l.chapter_id = c.id) AS loves,
	(SELECT COUNT(*) FROM chapter_views v WHERE v.chapter_id = c.id) AS views`

// scanChapter scans a chapter row into a domain.Chapter.
func scanChapter(scanner interface{ Scan(dest ...any) error }) (*domain.Chapter, error) {
	var c domain.Chapter
	var createdAt string

	err := scanner.Scan(
		&c.ID,
		&c.StoryID,
		&c.Title,
		&c.Content,
		&c.Number,
		&createdAt,
		&c.LoveCount,
		&c.ViewCount,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChapter inserts a new chapter, assigning the next number for the
// story in the same statement. The first chapter of a story gets number 1;
// numbers are never reused, so deleting a middle chapter leaves a gap.
// The assigned number is written back to chapter.Number.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) CreateChapter(ctx context.Context, chapter *domain.Chapter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chapters (id, story_id, title, content, number, created_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX(number), 0) + 1 FROM chapters WHERE story_id = ?),
			?)`,
		chapter.ID,
		chapter.StoryID,
		chapter.Title,
		chapter.Content,
		chapter.StoryID,
		formatTime(chapter.CreatedAt),
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

	return s.db.QueryRowContext(ctx,
		`SELECT number FROM chapters WHERE id = ?`, chapter.ID).Scan(&chapter.Number)
}

// GetChapter retrieves a chapter with engagement counts.
// Returns store.ErrNotFound if the chapter does not exist.
func (s *Store) GetChapter(ctx context.Context, id string) (*domain.Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters c WHERE c.id = ?`, id)

	c, err := scanChapter(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetChapterByNumber retrieves a chapter of a story by its number.
// Returns store.ErrNotFound if no chapter holds the number.
func (s *Store) GetChapterByNumber(ctx context.Context, storyID string, number int) (*domain.Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters c WHERE c.story_id = ? AND c.number = ?`,
		storyID, number)

	c, err := scanChapter(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListChapters returns a story's chapters in number order. When viewerID is
// set, each chapter's Loved flag reflects that user.
func (s *Store) ListChapters(ctx context.Context, storyID, viewerID string) ([]*domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters c WHERE c.story_id = ? ORDER BY c.number ASC`,
		storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*domain.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if viewerID != "" {
		for _, c := range chapters {
			loved, err := s.HasLoved(ctx, c.ID, viewerID)
			if err != nil {
				return nil, err
			}
			c.Loved = loved
		}
	}

	return chapters, nil
}

// UpdateChapter updates a chapter's title and content. The number is fixed
// at creation.
// Returns store.ErrNotFound if the chapter does not exist.
func (s *Store) UpdateChapter(ctx context.Context, chapter *domain.Chapter) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chapters SET title = ?, content = ? WHERE id = ?`,
		chapter.Title, chapter.Content, chapter.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteChapter removes a chapter along with its loves, views, and replies.
// Returns store.ErrNotFound if the chapter does not exist.
func (s *Store) DeleteChapter(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ToggleLove flips whether the user loves the chapter.
// Returns whether the love exists after the call.
func (s *Store) ToggleLove(ctx context.Context, chapterID, userID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM chapter_loves WHERE chapter_id = ? AND user_id = ?`,
		chapterID, userID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	loved := false
	if n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chapter_loves (chapter_id, user_id, created_at) VALUES (?, ?, ?)`,
			chapterID, userID, formatTime(time.Now())); err != nil {
			return false, err
		}
		loved = true
	}

	return loved, tx.Commit()
}

// HasLoved reports whether the user loves the chapter.
func (s *Store) HasLoved(ctx context.Context, chapterID, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM chapter_loves WHERE chapter_id = ? AND user_id = ?`,
		chapterID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddView records a view of the chapter from the given client address.
// Repeat views from the same address are ignored.
func (s *Store) AddView(ctx context.Context, chapterID, address string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chapter_views (chapter_id, address, created_at)
		VALUES (?, ?, ?)`,
		chapterID, address, formatTime(time.Now()))
	return err
}
