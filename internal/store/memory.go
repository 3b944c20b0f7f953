package store

import (
	"context"
	"sync"

	"github.com/Belphemur/titlovi/internal/models"
)

// MemoryStore keeps state for the lifetime of the process
type MemoryStore struct {
	mu    sync.RWMutex
	creds models.Credentials
	token *models.Token
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithCredentials creates a MemoryStore holding creds
func NewMemoryStoreWithCredentials(creds models.Credentials) *MemoryStore {
	return &MemoryStore{creds: creds}
}

func (s *MemoryStore) GetCredentials(context.Context) (models.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryStore) GetCachedToken(context.Context) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, nil
	}
	token := *s.token
	return &token, nil
}

func (s *MemoryStore) SaveToken(_ context.Context, token models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &token
	return nil
}

func (s *MemoryStore) ClearToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	return nil
}

func (s *MemoryStore) SaveCredentials(_ context.Context, creds models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds != creds {
		// A token belongs to the account that requested it
		s.token = nil
	}
	s.creds = creds
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
