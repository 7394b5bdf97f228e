package credential

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "acadreg/pkg/domain"
)

// CachedStore layers a Redis read-through cache over another Store.
// Verification is the hot path and credentials are immutable except for the
// valid flag, so entries only need invalidating on revocation. Cache errors
// never fail the operation; the inner store is authoritative.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(credID id.CredentialID) string {
	return "credential:" + credID.String()
}

func (s *CachedStore) Exists(ctx context.Context, credID id.CredentialID) (bool, error) {
	return s.inner.Exists(ctx, credID)
}

func (s *CachedStore) Get(ctx context.Context, credID id.CredentialID) (Credential, error) {
	payload, err := s.client.Get(ctx, cacheKey(credID)).Bytes()
	if err == nil {
		var cred Credential
		if err := json.Unmarshal(payload, &cred); err == nil {
			return cred, nil
		}
		// Corrupt entry: drop it and fall through to the inner store.
		s.client.Del(ctx, cacheKey(credID))
	}

	cred, err := s.inner.Get(ctx, credID)
	if err != nil {
		return Credential{}, err
	}
	s.cache(ctx, cred)
	return cred, nil
}

func (s *CachedStore) Insert(ctx context.Context, cred Credential) error {
	if err := s.inner.Insert(ctx, cred); err != nil {
		return err
	}
	s.cache(ctx, cred)
	return nil
}

func (s *CachedStore) SetValidity(ctx context.Context, credID id.CredentialID, valid bool) error {
	if err := s.inner.SetValidity(ctx, credID, valid); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey(credID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate credential cache",
			"credential_id", credID,
			"error", err,
		)
	}
	return nil
}

func (s *CachedStore) cache(ctx context.Context, cred Credential) {
	payload, err := json.Marshal(cred)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(cred.ID), payload, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to cache credential",
			"credential_id", cred.ID,
			"error", err,
		)
	}
}
