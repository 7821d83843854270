// Package domain defines the core entities: users, authors, stories,
// chapters, replies, and reports.
package domain

import "time"

// User represents an account in the system. Every user doubles as an author
// via the 1:1 Author profile created at registration.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"` // Stored hashed, never serialized

	// SocialID is set when the account was created through an OAuth provider.
	// Provider-linked accounts have no usable password.
	SocialID      string `json:"social_id,omitempty"`
	Picture       string `json:"picture,omitempty"`
	SocialPicture string `json:"social_picture,omitempty"`
	Cover         string `json:"cover,omitempty"`

	EmailVerified bool `json:"email_verified"`
	Suspended     bool `json:"suspended"`

	// TempEmail holds a requested new address until it is verified.
	TempEmail string `json:"temp_email,omitempty"`

	// AccessToken is the canonical bearer token for this user.
	// Possession of the exact string authenticates requests.
	AccessToken string `json:"-"`

	// CurrentResetToken is the only reset token honored at completion time.
	// Issuing a new one invalidates the previous.
	CurrentResetToken string     `json:"-"`
	LastPasswordReset *time.Time `json:"-"`

	CreatedAt time.Time `json:"joined"`
	UpdatedAt time.Time `json:"-"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// WithProvider reports whether the account is linked to an OAuth provider.
func (u *User) WithProvider() bool {
	return u.SocialID != ""
}

// ResetRequestAllowed reports whether a password reset may be requested now.
// At most one request is honored per 24 hours.
func (u *User) ResetRequestAllowed(now time.Time) bool {
	if u.LastPasswordReset == nil {
		return true
	}
	return !u.LastPasswordReset.Add(24 * time.Hour).After(now)
}

// SocialLinks holds an author's public profile URLs.
// JSON keys match the stored column and the web client's payloads.
type SocialLinks struct {
	Facebook  string `json:"fb,omitempty"`
	Instagram string `json:"insta,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// Author is the public writing profile attached 1:1 to a user.
type Author struct {
	UserID   string      `json:"user_id"`
	Nickname string      `json:"nickname,omitempty"`
	Social   SocialLinks `json:"social"`

	// Denormalized counts populated on read.
	FollowerCount int `json:"followers_count"`
	StoryCount    int `json:"stories_no"`
}

// PenName returns the name shown on the author's stories:
// the nickname when set, otherwise the user's full name.
func (a *Author) PenName(u *User) string {
	if a.Nickname != "" {
		return a.Nickname
	}
	return u.FullName()
}
