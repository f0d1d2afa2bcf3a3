package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"petrosmart-backend/shared/utils/cache"
)

const (
	tokenBlacklistPrefix = "blacklist:token:"
	userBlacklistPrefix  = "blacklist:user:"
)

// TokenBlacklistService revokes JWTs before their natural expiry. Individual
// tokens are keyed by their raw string; whole-account revocation stores a
// floor timestamp that invalidates every token issued before it.
type TokenBlacklistService struct {
	cache     *cache.CacheManager
	tokenLife time.Duration
}

func NewTokenBlacklistService(cm *cache.CacheManager, tokenLife time.Duration) *TokenBlacklistService {
	return &TokenBlacklistService{cache: cm, tokenLife: tokenLife}
}

// BlacklistToken revokes a single token until the given expiry. Tokens
// already past expiry need no entry.
func (s *TokenBlacklistService) BlacklistToken(token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(tokenBlacklistPrefix+token, "1", ttl)
}

// IsTokenBlacklisted reports whether a specific token has been revoked. A
// cache error fails closed so a revoked token is never honored.
func (s *TokenBlacklistService) IsTokenBlacklisted(token string) (bool, error) {
	_, found, err := s.cache.Get(tokenBlacklistPrefix + token)
	if err != nil {
		return true, err
	}
	return found, nil
}

// BlacklistUserTokens revokes every token the account holds by recording the
// current time as a floor. The entry lives as long as the longest-lived
// token could, after which no outstanding token can predate it.
func (s *TokenBlacklistService) BlacklistUserTokens(userID uuid.UUID) error {
	floor := time.Now().UnixMilli()
	return s.cache.Set(userBlacklistPrefix+userID.String(), strconv.FormatInt(floor, 10), s.tokenLife)
}

// AreUserTokensBlacklisted reports whether a token issued at the given time
// falls under the account's revocation floor.
func (s *TokenBlacklistService) AreUserTokensBlacklisted(userID uuid.UUID, issuedAt time.Time) (bool, error) {
	value, found, err := s.cache.Get(userBlacklistPrefix + userID.String())
	if err != nil {
		return true, err
	}
	if !found {
		return false, nil
	}

	floor, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return true, fmt.Errorf("invalid blacklist floor for user %s: %w", userID, err)
	}

	return issuedAt.UnixMilli() < floor, nil
}
