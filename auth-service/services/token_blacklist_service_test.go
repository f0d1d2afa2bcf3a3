package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBlacklistSingleToken(t *testing.T) {
	cm := newTestCache(t)
	svc := NewTokenBlacklistService(cm, 24*time.Hour)

	token := "some.jwt.token"

	revoked, err := svc.IsTokenBlacklisted(token)
	if err != nil {
		t.Fatalf("IsTokenBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("token should not be blacklisted yet")
	}

	if err := svc.BlacklistToken(token, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("BlacklistToken failed: %v", err)
	}

	revoked, err = svc.IsTokenBlacklisted(token)
	if err != nil {
		t.Fatalf("IsTokenBlacklisted failed: %v", err)
	}
	if !revoked {
		t.Fatal("token should be blacklisted")
	}

	// A different token is unaffected.
	revoked, err = svc.IsTokenBlacklisted("other.jwt.token")
	if err != nil {
		t.Fatalf("IsTokenBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("unrelated token should not be blacklisted")
	}
}

func TestBlacklistExpiredTokenIsNoop(t *testing.T) {
	cm := newTestCache(t)
	svc := NewTokenBlacklistService(cm, 24*time.Hour)

	if err := svc.BlacklistToken("stale.jwt.token", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("BlacklistToken failed: %v", err)
	}

	revoked, err := svc.IsTokenBlacklisted("stale.jwt.token")
	if err != nil {
		t.Fatalf("IsTokenBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("token past expiry needs no blacklist entry")
	}
}

func TestUserRevocationFloor(t *testing.T) {
	cm := newTestCache(t)
	svc := NewTokenBlacklistService(cm, 24*time.Hour)
	userID := uuid.New()

	issuedBefore := time.Now().Add(-time.Minute)

	revoked, err := svc.AreUserTokensBlacklisted(userID, issuedBefore)
	if err != nil {
		t.Fatalf("AreUserTokensBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("no floor recorded yet")
	}

	if err := svc.BlacklistUserTokens(userID); err != nil {
		t.Fatalf("BlacklistUserTokens failed: %v", err)
	}

	revoked, err = svc.AreUserTokensBlacklisted(userID, issuedBefore)
	if err != nil {
		t.Fatalf("AreUserTokensBlacklisted failed: %v", err)
	}
	if !revoked {
		t.Fatal("token issued before the floor must be revoked")
	}

	issuedAfter := time.Now().Add(time.Second)
	revoked, err = svc.AreUserTokensBlacklisted(userID, issuedAfter)
	if err != nil {
		t.Fatalf("AreUserTokensBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("token issued after the floor must stay valid")
	}

	// Another account is unaffected.
	revoked, err = svc.AreUserTokensBlacklisted(uuid.New(), issuedBefore)
	if err != nil {
		t.Fatalf("AreUserTokensBlacklisted failed: %v", err)
	}
	if revoked {
		t.Fatal("floor must not apply to other accounts")
	}
}
