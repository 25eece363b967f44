package scoring

import (
	"context"
	"sync"

	"jobmate/search-service/internal/model"
)

// MemoryStore is an in-process Store used in tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]model.ScoringConfig
}

// NewMemoryStore returns a store seeded with cfgs.
func NewMemoryStore(cfgs ...model.ScoringConfig) *MemoryStore {
	s := &MemoryStore{configs: make(map[string]model.ScoringConfig)}
	for _, cfg := range cfgs {
		s.configs[cfg.TenantID] = cfg
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, tenantID string) (model.ScoringConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[tenantID]
	if !ok {
		return model.ScoringConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (s *MemoryStore) Put(_ context.Context, cfg model.ScoringConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.TenantID] = cfg
	return nil
}
