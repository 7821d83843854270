package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// storyColumns selects a story joined with its author's display fields and
// aggregate engagement. Must match the scan order in scanStory.
const storyColumns = `s.id, s.author_id, s.title, s.description, s.tags,
	s.category, s.cover, s.finished, s.created_at,
	a.nickname, u.first_name, u.last_name,
	(SELECT COUNT(*) FROM chapter_views v
		JOIN chapters c ON c.id = v.chapter_id WHERE c.story_id = s.id) AS views,
	(SELECT COUNT(*) FROM chapter_loves l
		JOIN chapters c ON c.id = l.chapter_id WHERE c.story_id = s.id) AS loves,
	(SELECT COUNT(*) FROM replies r
		JOIN chapters c ON c.id = r.chapter_id WHERE c.story_id = s.id) AS replies`

const storyJoins = ` FROM stories s
	JOIN authors a ON a.user_id = s.author_id
	JOIN users u ON u.id = s.author_id`

// scanStory scans a joined story row into a store.StoryRecord.
func scanStory(scanner interface{ Scan(dest ...any) error }) (*store.StoryRecord, error) {
	var r store.StoryRecord

	var (
		tagsRaw   string
		cover     sql.NullString
		finished  int
		createdAt string
		nickname  sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&r.AuthorID,
		&r.Title,
		&r.Description,
		&tagsRaw,
		&r.Category,
		&cover,
		&finished,
		&createdAt,
		&nickname,
		&r.AuthorFirstName,
		&r.AuthorLastName,
		&r.Views,
		&r.Loves,
		&r.Replies,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	if tagsRaw != "" {
		if err := json.Unmarshal([]byte(tagsRaw), &r.Tags); err != nil {
			return nil, err
		}
	}

	r.Cover = cover.String
	r.Finished = finished != 0
	r.AuthorNickname = nickname.String

	return &r, nil
}

// CreateStory inserts a new story.
// Returns store.ErrAlreadyExists on an ID collision.
func (s *Store) CreateStory(ctx context.Context, story *domain.Story) error {
	tags, err := json.Marshal(story.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stories (id, author_id, title, description, tags, category, cover, finished, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID,
		story.AuthorID,
		story.Title,
		story.Description,
		string(tags),
		string(story.Category),
		nullString(story.Cover),
		boolToInt(story.Finished),
		formatTime(story.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetStory retrieves a story with author fields and engagement counts.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) GetStory(ctx context.Context, id string) (*store.StoryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+storyJoins+` WHERE s.id = ?`, id)

	r, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateStory updates the mutable fields of a story. The author reference
// never changes.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) UpdateStory(ctx context.Context, story *domain.Story) error {
	tags, err := json.Marshal(story.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE stories SET title = ?, description = ?, tags = ?, category = ?, cover = ?, finished = ?
		WHERE id = ?`,
		story.Title,
		story.Description,
		string(tags),
		string(story.Category),
		nullString(story.Cover),
		boolToInt(story.Finished),
		story.ID,
	)
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

// DeleteStory removes a story and its chapters, loves, views, and replies
// via foreign key cascades.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
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

// FindStories returns the candidate set for a search or feed, hard filters
// applied. Fuzzy scoring, sorting, and pagination happen in the service layer.
func (s *Store) FindStories(ctx context.Context, filter store.StoryFilter) ([]*store.StoryRecord, error) {
	query := `SELECT ` + storyColumns + storyJoins
	var (
		conds []string
		args  []any
	)

	if filter.AuthorID != "" {
		conds = append(conds, "s.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.FollowerID != "" {
		conds = append(conds, "s.author_id IN (SELECT author_id FROM follows WHERE follower_id = ?)")
		args = append(args, filter.FollowerID)
	}
	if filter.Category != "" {
		conds = append(conds, "s.category = ?")
		args = append(args, filter.Category)
	}
	if !filter.CreatedAfter.IsZero() {
		conds = append(conds, "s.created_at >= ?")
		args = append(args, formatTime(filter.CreatedAfter))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*store.StoryRecord
	for rows.Next() {
		r, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stories, nil
}

// GetStoryStats aggregates views, loves, and replies across a story's chapters.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) GetStoryStats(ctx context.Context, storyID string) (*domain.StoryStats, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM stories WHERE id = ?`, storyID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var stats domain.StoryStats
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM chapter_views v
				JOIN chapters c ON c.id = v.chapter_id WHERE c.story_id = ?),
			(SELECT COUNT(*) FROM chapter_loves l
				JOIN chapters c ON c.id = l.chapter_id WHERE c.story_id = ?),
			(SELECT COUNT(*) FROM replies r
				JOIN chapters c ON c.id = r.chapter_id WHERE c.story_id = ?)`,
		storyID, storyID, storyID,
	).Scan(&stats.Views, &stats.Loves, &stats.Replies)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
