package favorites

import (
	"context"
	"sync"

	"mixologist/internal/pkg/common"
)

// MemoryStore 行程內收藏儲存
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]common.CocktailProfile
}

// NewMemoryStore 創建記憶體收藏儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]common.CocktailProfile)}
}

func (s *MemoryStore) Put(_ context.Context, profile common.CocktailProfile) error {
	key, err := validName(profile.Name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = profile.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	key, err := validName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (common.CocktailProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[common.NameKey(name)]
	if !ok {
		return common.CocktailProfile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]common.CocktailProfile, error) {
	s.mu.RLock()
	out := make([]common.CocktailProfile, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sortByName(out)
	return out, nil
}

func (s *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[common.NameKey(name)]
	return ok, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
