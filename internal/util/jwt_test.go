package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTManagerGenerateAndParse(t *testing.T) {
	ttl := time.Minute
	manager := NewJWTManager("top-secret", ttl)

	userID := uuid.New()
	token, expiresAt, err := manager.Generate(userID, "user@example.com", "tester", "user", true)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be non-empty")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatalf("expected expiry in the future")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Nickname != "tester" {
		t.Fatalf("expected nickname claim to survive the round trip")
	}
	if claims.Role != "user" {
		t.Fatalf("expected role claim %q, got %q", "user", claims.Role)
	}
	if !claims.Verified {
		t.Fatalf("expected verified claim to be true")
	}
}

func TestJWTManagerParseExpiredToken(t *testing.T) {
	manager := NewJWTManager("secret", time.Millisecond)
	userID := uuid.New()
	token, _, err := manager.Generate(userID, "user@example.com", "tester", "user", false)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestJWTManagerRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", time.Minute)
	token, _, err := manager.Generate(uuid.New(), "user@example.com", "tester", "user", true)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	other := NewJWTManager("secret-b", time.Minute)
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected parse error for token signed with a different secret")
	}
}
