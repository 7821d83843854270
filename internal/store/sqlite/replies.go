package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// replyColumns selects a reply joined with the commenting user's display
// fields. Must match the scan order in scanReply.
const replyColumns = `r.id, r.chapter_id, r.user_id, r.content, r.created_at,
	u.first_name, u.last_name, u.picture`

// scanReply scans a joined reply row into a store.ReplyRecord.
func scanReply(scanner interface{ Scan(dest ...any) error }) (*store.ReplyRecord, error) {
	var rec store.ReplyRecord

	var (
		createdAt string
		picture   sql.NullString
	)

	err := scanner.Scan(
		&rec.ID,
		&rec.ChapterID,
		&rec.UserID,
		&rec.Content,
		&createdAt,
		&rec.FirstName,
		&rec.LastName,
		&picture,
	)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.Picture = picture.String

	return &rec, nil
}

// CreateReply inserts a new reply.
// Returns store.ErrNotFound if the chapter or user does not exist.
func (s *Store) CreateReply(ctx context.Context, reply *domain.Reply) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO replies (id, chapter_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		reply.ID,
		reply.ChapterID,
		reply.UserID,
		reply.Content,
		formatTime(reply.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithMessage("chapter not found")
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetReply retrieves a reply by ID.
// Returns store.ErrNotFound if the reply does not exist.
func (s *Store) GetReply(ctx context.Context, id string) (*domain.Reply, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, chapter_id, user_id, content, created_at FROM replies WHERE id = ?`, id)

	var r domain.Reply
	var createdAt string
	err := row.Scan(&r.ID, &r.ChapterID, &r.UserID, &r.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReplies returns a page of a chapter's replies, newest first, along
// with the total reply count.
func (s *Store) ListReplies(ctx context.Context, chapterID string, offset, limit int) ([]*store.ReplyRecord, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM replies WHERE chapter_id = ?`, chapterID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+replyColumns+` FROM replies r
		JOIN users u ON u.id = r.user_id
		WHERE r.chapter_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?`,
		chapterID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var replies []*store.ReplyRecord
	for rows.Next() {
		rec, err := scanReply(rows)
		if err != nil {
			return nil, 0, err
		}
		replies = append(replies, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return replies, total, nil
}

// UpdateReply updates a reply's content.
// Returns store.ErrNotFound if the reply does not exist.
func (s *Store) UpdateReply(ctx context.Context, reply *domain.Reply) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE replies SET content = ? WHERE id = ?`, reply.Content, reply.ID)
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

// DeleteReply removes a reply.
// Returns store.ErrNotFound if the reply does not exist.
func (s *Store) DeleteReply(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM replies WHERE id = ?`, id)
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
