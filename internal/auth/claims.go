package auth

import "time"

// ActionClaims are the decoded claims of a PASETO action token.
type ActionClaims struct {
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	NotBefore  time.Time `json:"nbf"`
	TokenID    string    `json:"jti"`

	// Purpose names the flow this token is valid for.
	Purpose string `json:"purpose"`
	// Email carries the pending address for email-change tokens.
	Email string `json:"email,omitempty"`
}

// UserID returns the subject, which is always the user ID.
func (c *ActionClaims) UserID() string {
	return c.Subject
}
