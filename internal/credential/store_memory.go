package credential

import (
	"context"
	"sync"

	id "acadreg/pkg/domain"
	"acadreg/pkg/platform/sentinel"
)

// InMemoryStore keeps the default deployment lightweight and testable. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.CredentialID]Credential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.CredentialID]Credential)}
}

func (s *InMemoryStore) Exists(_ context.Context, credID id.CredentialID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[credID]
	return ok, nil
}

func (s *InMemoryStore) Get(_ context.Context, credID id.CredentialID) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.records[credID]; ok {
		return cred, nil
	}
	return Credential{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Insert(_ context.Context, cred Credential) error {
	if !cred.Exists() {
		// A zero IssuedAt would be indistinguishable from the absent sentinel.
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[cred.ID]; ok {
		return sentinel.ErrConflict
	}
	s.records[cred.ID] = cred
	return nil
}

func (s *InMemoryStore) SetValidity(_ context.Context, credID id.CredentialID, valid bool) error {
	if valid {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.records[credID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cred.Valid = false
	s.records[credID] = cred
	return nil
}
