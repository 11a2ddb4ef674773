package auth

import (
	"context"
	"francoggm/mpesa-c2b-relay/internal/models"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	token *models.AccessToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*models.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, nil
	}

	token := *s.token
	return &token, nil
}

func (s *MemoryStore) Save(ctx context.Context, token *models.AccessToken) error {
	stored := *token

	s.mu.Lock()
	s.token = &stored
	s.mu.Unlock()

	return nil
}
