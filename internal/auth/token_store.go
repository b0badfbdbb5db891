package auth

import (
	"context"
	"strconv"
	"time"

	"accountbook/internal/cache"
)

const (
	sessionKeyPrefix = "session:"
	revokedKeyPrefix = "revoked_token:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	Record(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps issued and revoked token IDs in the cache.
type TokenStore struct {
	cache cache.Store
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(store cache.Store) *TokenStore {
	return &TokenStore{cache: store}
}

// Record remembers which user a token was issued to.
func (s *TokenStore) Record(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	return s.cache.Set(ctx, sessionKeyPrefix+tokenID, []byte(strconv.FormatUint(uint64(userID), 10)), ttl)
}

// Revoke blacklists a token until it would have expired anyway.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
	}
	if err := s.cache.Set(ctx, revokedKeyPrefix+tokenID, []byte("1"), ttl); err != nil {
		return err
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}

// IsRevoked checks the blacklist. An unreachable cache reads as "not revoked".
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
