package access

import (
	"context"
	"sync"

	id "acadreg/pkg/domain"
	"acadreg/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	admin        id.Principal
	institutions map[id.Principal]Institution
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{institutions: make(map[id.Principal]Institution)}
}

func (s *InMemoryStore) Administrator(_ context.Context) (id.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin.IsNil() {
		return id.NilPrincipal, sentinel.ErrNotFound
	}
	return s.admin, nil
}

func (s *InMemoryStore) SetAdministrator(_ context.Context, admin id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = admin
	return nil
}

func (s *InMemoryStore) FindInstitution(_ context.Context, principal id.Principal) (Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inst, ok := s.institutions[principal]; ok {
		return inst, nil
	}
	return Institution{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) SaveInstitution(_ context.Context, inst Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.institutions[inst.Principal] = inst
	return nil
}

func (s *InMemoryStore) RemoveInstitution(_ context.Context, principal id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.institutions, principal)
	return nil
}
