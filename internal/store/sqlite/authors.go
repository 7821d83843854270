package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// authorColumns selects an author joined with the owning user's display
// fields and aggregate counts. Must match the scan order in scanAuthor.
const authorColumns = `a.user_id, a.nickname, a.social,
	u.first_name, u.last_name, u.picture,
	(SELECT COUNT(*) FROM follows f WHERE f.author_id = a.user_id) AS follower_count,
	(SELECT COUNT(*) FROM stories s WHERE s.author_id = a.user_id) AS story_count`

// scanAuthor scans a joined author row into a store.AuthorRecord.
func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*store.AuthorRecord, error) {
	var r store.AuthorRecord

	var (
		nickname  sql.NullString
		socialRaw string
		picture   sql.NullString
	)

	err := scanner.Scan(
		&r.UserID,
		&nickname,
		&socialRaw,
		&r.FirstName,
		&r.LastName,
		&picture,
		&r.FollowerCount,
		&r.StoryCount,
	)
	if err != nil {
		return nil, err
	}

	r.Nickname = nickname.String
	r.Picture = picture.String

	if socialRaw != "" {
		if err := json.Unmarshal([]byte(socialRaw), &r.Social); err != nil {
			return nil, err
		}
	}

	return &r, nil
}

// CreateAuthor inserts the author profile for a user.
// Returns store.ErrAlreadyExists if the user already has a profile or the
// nickname is taken.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	social, err := json.Marshal(author.Social)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO authors (user_id, nickname, social) VALUES (?, ?, ?)`,
		author.UserID,
		nullString(author.Nickname),
		string(social),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAuthor retrieves an author profile by the owning user's ID.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) GetAuthor(ctx context.Context, userID string) (*store.AuthorRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+authorColumns+` FROM authors a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = ?`, userID)

	r, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetAuthorByNickname retrieves an author by exact nickname.
// Returns store.ErrNotFound if no author holds the nickname.
func (s *Store) GetAuthorByNickname(ctx context.Context, nickname string) (*store.AuthorRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+authorColumns+` FROM authors a
		JOIN users u ON u.id = a.user_id
		WHERE a.nickname = ?`, nickname)

	r, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateAuthor updates the nickname and social links of an author profile.
// Returns store.ErrNotFound if the profile does not exist, and
// store.ErrAlreadyExists on a nickname collision.
func (s *Store) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	social, err := json.Marshal(author.Social)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE authors SET nickname = ?, social = ? WHERE user_id = ?`,
		nullString(author.Nickname),
		string(social),
		author.UserID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
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

// ListAuthors returns all author profiles ordered by follower count, most
// followed first. Scoring and pagination of the directory happen in the
// service layer.
func (s *Store) ListAuthors(ctx context.Context) ([]*store.AuthorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+authorColumns+` FROM authors a
		JOIN users u ON u.id = a.user_id
		ORDER BY follower_count DESC, a.user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*store.AuthorRecord
	for rows.Next() {
		r, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

// ToggleFollow flips the follow relation between a follower and an author.
// Returns whether the follower follows the author after the call.
func (s *Store) ToggleFollow(ctx context.Context, authorID, followerID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM follows WHERE author_id = ? AND follower_id = ?`,
		authorID, followerID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	following := false
	if n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO follows (author_id, follower_id, created_at) VALUES (?, ?, ?)`,
			authorID, followerID, formatTime(time.Now())); err != nil {
			return false, err
		}
		following = true
	}

	return following, tx.Commit()
}

// IsFollowing reports whether the follower follows the author.
func (s *Store) IsFollowing(ctx context.Context, authorID, followerID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM follows WHERE author_id = ? AND follower_id = ?`,
		authorID, followerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
