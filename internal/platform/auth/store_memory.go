package auth

import (
	"context"
	"sync"
)

// MemoryStore keeps accounts in process; used with the "memory" driver and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) Create(_ context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return ErrAlreadyExists
	}
	s.accounts[a.ID] = *a
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return 0, nil
	}
	delete(s.accounts, id)
	return 1, nil
}

func (s *MemoryStore) UpdateID(_ context.Context, oldID, newID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[oldID]
	if !ok {
		return 0, nil
	}
	if _, taken := s.accounts[newID]; taken {
		return 0, ErrAlreadyExists
	}
	delete(s.accounts, oldID)
	a.ID = newID
	s.accounts[newID] = a
	return 1, nil
}

func (s *MemoryStore) SetDisabled(_ context.Context, id string, disabled bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return 0, nil
	}
	a.IsDisabled = disabled
	s.accounts[id] = a
	return 1, nil
}
