package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := tm.Generate(userID, "jdoe", "manager")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if claims.UserID != userID.String() {
		t.Errorf("user id mismatch: %s", claims.UserID)
	}
	if claims.Username != "jdoe" {
		t.Errorf("username mismatch: %s", claims.Username)
	}
	if claims.Role != "manager" {
		t.Errorf("role mismatch: %s", claims.Role)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("expected issued-at and expiry claims")
	}
	if remaining := time.Until(claims.ExpiresAt.Time); remaining > time.Hour || remaining < 50*time.Minute {
		t.Errorf("unexpected expiry: %v", claims.ExpiresAt.Time)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := other.Generate(uuid.New(), "jdoe", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := tm.Validate(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestTokenTampered(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate(uuid.New(), "jdoe", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := tm.Validate(tampered); err == nil {
		t.Fatal("tampered token must not validate")
	}
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate(uuid.New(), "jdoe", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := tm.Validate(token); err == nil {
		t.Fatal("expired token must not validate")
	}
}
