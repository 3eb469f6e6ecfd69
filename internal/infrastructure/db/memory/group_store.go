package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// GroupStore implements ports.GroupStore in process memory.
type GroupStore struct {
	mu     sync.Mutex
	byID   map[string]*domain.Group
	byName map[string]string
	now    func() time.Time
}

func NewGroupStore() *GroupStore {
	return &GroupStore{
		byID:   make(map[string]*domain.Group),
		byName: make(map[string]string),
		now:    time.Now,
	}
}

// EnsureGroup returns the group named name, creating it on first use.
func (s *GroupStore) EnsureGroup(_ context.Context, name string, permissions []string) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[name]; ok {
		return cloneGroup(s.byID[id]), nil
	}

	g := &domain.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Permissions: append([]string{}, permissions...),
		CreatedAt:   s.now().UTC(),
	}
	s.byID[g.ID] = g
	s.byName[name] = g.ID
	return cloneGroup(g), nil
}

func (s *GroupStore) FindGroups(_ context.Context, ids []string) ([]*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Group
	for _, id := range ids {
		if g, ok := s.byID[id]; ok {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

// Len returns the number of groups.
func (s *GroupStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func cloneGroup(g *domain.Group) *domain.Group {
	out := *g
	out.Permissions = append([]string{}, g.Permissions...)
	return &out
}
