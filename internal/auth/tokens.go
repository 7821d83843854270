package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/abdotaker608/golden-pens-api/internal/id"
)

const (
	tokenIssuer   = "golden-pens-api"
	tokenAudience = "golden-pens-web"

	// PASETO v4 symmetric key size.
	keyBytesSize = 32
	// Canonical access tokens carry 160 bits of entropy (40 hex chars).
	accessTokenSize = 20
)

// Purpose restricts an action token to a single flow. A verification token
// can never be replayed as a password reset and vice versa.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeEmailChange   Purpose = "email-change"
	PurposeResetPassword Purpose = "reset-password"
	PurposeSession       Purpose = "session"
)

// TokenService issues and verifies PASETO v4.local action tokens.
type TokenService struct {
	symmetricKey    paseto.V4SymmetricKey
	actionDuration  time.Duration
	sessionDuration time.Duration
}

// NewTokenService creates a token service from a raw 32-byte symmetric key.
// actionDuration bounds email verification and reset links; sessionDuration
// bounds remember-me session tokens.
func NewTokenService(key []byte, actionDuration, sessionDuration time.Duration) (*TokenService, error) {
	if len(key) != keyBytesSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyBytesSize, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:    symmetricKey,
		actionDuration:  actionDuration,
		sessionDuration: sessionDuration,
	}, nil
}

// GenerateAccessToken creates the opaque canonical access token stored on the
// user row. It is random bytes, not a structured token; possession of the
// exact string is what authenticates a request.
func GenerateAccessToken() (string, error) {
	b := make([]byte, accessTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateActionToken creates an encrypted, purpose-bound token for the user.
// Extra claims (like a pending email address) ride along in the payload.
func (s *TokenService) GenerateActionToken(purpose Purpose, userID string, extra map[string]string) (string, error) {
	now := time.Now()
	duration := s.actionDuration
	if purpose == PurposeSession {
		duration = s.sessionDuration
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(userID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(duration))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("purpose", string(purpose))
	for k, v := range extra {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set(k, v)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyActionToken decrypts and validates an action token, requiring the
// given purpose. Returns the claims if valid.
func (s *TokenService) VerifyActionToken(tokenString string, purpose Purpose) (*ActionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims ActionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	if claims.Purpose != string(purpose) {
		return nil, fmt.Errorf("token purpose %q does not match %q", claims.Purpose, purpose)
	}

	return &claims, nil
}

// ActionDuration returns the configured action token lifetime.
func (s *TokenService) ActionDuration() time.Duration {
	return s.actionDuration
}

// SessionDuration returns the configured session token lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.sessionDuration
}
