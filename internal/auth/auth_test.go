package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil || !ok {
		t.Errorf("expected password to verify, ok=%v err=%v", ok, err)
	}

	ok, _ = VerifyPassword(hash, "wrong password")
	if ok {
		t.Error("wrong password should not verify")
	}

	ok, _ = VerifyPassword("not-a-hash", "anything")
	if ok {
		t.Error("malformed hash should not verify")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("empty password should be rejected")
	}
}

func TestGenerateAccessToken(t *testing.T) {
	a, err := GenerateAccessToken()
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	b, err := GenerateAccessToken()
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if len(a) != 40 {
		t.Errorf("expected 40 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("tokens should be unique")
	}
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key := make([]byte, 32)
	svc, err := NewTokenService(key, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestActionTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateActionToken(PurposeVerifyEmail, "user-123", nil)
	if err != nil {
		t.Fatalf("GenerateActionToken: %v", err)
	}

	claims, err := svc.VerifyActionToken(token, PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("VerifyActionToken: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.UserID())
	}
}

func TestActionTokenPurposeMismatch(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateActionToken(PurposeVerifyEmail, "user-123", nil)
	if err != nil {
		t.Fatalf("GenerateActionToken: %v", err)
	}

	if _, err := svc.VerifyActionToken(token, PurposeResetPassword); err == nil {
		t.Error("verification token should not pass as a reset token")
	}
}

func TestActionTokenExtraClaims(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateActionToken(PurposeEmailChange, "user-123", map[string]string{"email": "new@example.com"})
	if err != nil {
		t.Fatalf("GenerateActionToken: %v", err)
	}

	claims, err := svc.VerifyActionToken(token, PurposeEmailChange)
	if err != nil {
		t.Fatalf("VerifyActionToken: %v", err)
	}
	if claims.Email != "new@example.com" {
		t.Errorf("email claim = %q, want new@example.com", claims.Email)
	}
}

func TestNewTokenServiceRejectsBadKey(t *testing.T) {
	if _, err := NewTokenService(make([]byte, 16), time.Hour, time.Hour); err == nil {
		t.Error("short key should be rejected")
	}
}
