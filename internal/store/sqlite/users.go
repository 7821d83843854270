package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, first_name, last_name,
	password_hash, social_id, picture, social_picture, cover,
	email_verified, suspended, temp_email, access_token,
	current_reset_token, last_password_reset`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt         string
		updatedAt         string
		passwordHash      sql.NullString
		socialID          sql.NullString
		picture           sql.NullString
		socialPicture     sql.NullString
		cover             sql.NullString
		emailVerified     int
		suspended         int
		tempEmail         sql.NullString
		currentResetToken sql.NullString
		lastPasswordReset sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&passwordHash,
		&socialID,
		&picture,
		&socialPicture,
		&cover,
		&emailVerified,
		&suspended,
		&tempEmail,
		&u.AccessToken,
		&currentResetToken,
		&lastPasswordReset,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastPasswordReset, err = parseNullableTime(lastPasswordReset)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = passwordHash.String
	u.SocialID = socialID.String
	u.Picture = picture.String
	u.SocialPicture = socialPicture.String
	u.Cover = cover.String
	u.TempEmail = tempEmail.String
	u.CurrentResetToken = currentResetToken.String

	u.EmailVerified = emailVerified != 0
	u.Suspended = suspended != 0

	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the ID, email, or access token collides.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	emailLower := strings.ToLower(strings.TrimSpace(user.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, email, email_lower, first_name, last_name,
			password_hash, social_id, picture, social_picture, cover,
			email_verified, suspended, temp_email, access_token,
			current_reset_token, last_password_reset
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Email,
		emailLower,
		user.FirstName,
		user.LastName,
		nullString(user.PasswordHash),
		nullString(user.SocialID),
		nullString(user.Picture),
		nullString(user.SocialPicture),
		nullString(user.Cover),
		boolToInt(user.EmailVerified),
		boolToInt(user.Suspended),
		nullString(user.TempEmail),
		user.AccessToken,
		nullString(user.CurrentResetToken),
		nullTimeString(user.LastPasswordReset),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by case-insensitive email match.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	lower := strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, lower)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserBySocialID retrieves a provider-linked user.
// Returns store.ErrNotFound if no user is linked to the given provider ID.
func (s *Store) GetUserBySocialID(ctx context.Context, socialID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE social_id = ?`, socialID)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByAccessToken retrieves the user holding the given canonical token.
// Returns store.ErrNotFound if no user holds the token.
func (s *Store) GetUserByAccessToken(ctx context.Context, token string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE access_token = ?`, token)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser performs a full row update on an existing user.
// Returns store.ErrNotFound if the user does not exist, and
// store.ErrAlreadyExists if the new email collides with another account.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	emailLower := strings.ToLower(strings.TrimSpace(user.Email))

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?,
			email = ?,
			email_lower = ?,
			first_name = ?,
			last_name = ?,
			password_hash = ?,
			social_id = ?,
			picture = ?,
			social_picture = ?,
			cover = ?,
			email_verified = ?,
			suspended = ?,
			temp_email = ?,
			access_token = ?,
			current_reset_token = ?,
			last_password_reset = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Email,
		emailLower,
		user.FirstName,
		user.LastName,
		nullString(user.PasswordHash),
		nullString(user.SocialID),
		nullString(user.Picture),
		nullString(user.SocialPicture),
		nullString(user.Cover),
		boolToInt(user.EmailVerified),
		boolToInt(user.Suspended),
		nullString(user.TempEmail),
		user.AccessToken,
		nullString(user.CurrentResetToken),
		nullTimeString(user.LastPasswordReset),
		user.ID,
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

// DeleteUser removes a user. Author profile, stories, follows, loves, and
// replies go with it via foreign key cascades.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
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
