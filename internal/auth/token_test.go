package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	tokens, err := NewTokens("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	signed, expiresAt, err := tokens.Issue("id-42", "Seller@Example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	claims, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "id-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "seller@example.com" {
		t.Fatalf("email was not normalized: %s", claims.Email)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	tokens, err := NewTokens("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	tokens.WithClock(func() time.Time { return clock })

	signed, _, err := tokens.Issue("id-42", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock = base.Add(2 * time.Minute)
	if _, err := tokens.Parse(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	for _, raw := range []string{"", "   ", "a.b.c", "not-a-token"} {
		if _, err := tokens.Parse(raw); err != ErrInvalidToken {
			t.Fatalf("Parse(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("   ", time.Minute); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
