// Package memory provides mutex-guarded stores for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// PersonStore implements ports.PersonStore in process memory.
type PersonStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Person
	byName map[string]string // username -> id, type "person" only
	now    func() time.Time
}

func NewPersonStore() *PersonStore {
	return &PersonStore{
		byID:   make(map[string]*domain.Person),
		byName: make(map[string]string),
		now:    time.Now,
	}
}

func (s *PersonStore) FindPerson(_ context.Context, username string) (*domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	return clonePerson(s.byID[id]), nil
}

// SavePerson inserts p when it has no ID, otherwise replaces the record
// with the same ID and username.
func (s *PersonStore) SavePerson(_ context.Context, p *domain.Person) (*domain.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	saved := clonePerson(p)
	if saved.Type == "" {
		saved.Type = domain.PersonType
	}
	saved.UpdatedAt = now

	if saved.ID == "" {
		if saved.Type == domain.PersonType {
			if _, taken := s.byName[saved.Username]; taken {
				return nil, domain.ErrPersonExists
			}
		}
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
	} else if existing, ok := s.byID[saved.ID]; ok {
		if existing.Username != saved.Username {
			return nil, domain.ErrIDConflict
		}
		saved.CreatedAt = existing.CreatedAt
	} else if id, taken := s.byName[saved.Username]; taken && id != saved.ID && saved.Type == domain.PersonType {
		return nil, domain.ErrPersonExists
	}

	s.byID[saved.ID] = saved
	if saved.Type == domain.PersonType {
		s.byName[saved.Username] = saved.ID
	}
	return clonePerson(saved), nil
}

// Len returns the number of stored records.
func (s *PersonStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func clonePerson(p *domain.Person) *domain.Person {
	out := *p
	out.GroupIDs = append([]string{}, p.GroupIDs...)
	out.Permissions = p.Permissions.Clone()
	if p.Fields != nil {
		out.Fields = make(map[string]any, len(p.Fields))
		for k, v := range p.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}
