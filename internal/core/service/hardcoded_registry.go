package service

import (
	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// Registry holds the statically configured accounts that bypass the person
// store. It is read-only after construction.
type Registry struct {
	users []domain.HardcodedUser
}

// NewRegistry copies users into a registry. Order is preserved; when two
// entries share a username the first one wins.
func NewRegistry(users []domain.HardcodedUser) *Registry {
	copied := make([]domain.HardcodedUser, len(users))
	for i, u := range users {
		u.Permissions = u.Permissions.Clone()
		copied[i] = u
	}
	return &Registry{users: copied}
}

// Lookup scans for an entry whose username equals the input exactly and
// returns a fresh identity for it.
func (r *Registry) Lookup(username string) (*domain.Identity, bool) {
	if r == nil {
		return nil, false
	}
	for _, u := range r.users {
		if u.Username == username {
			return u.Identity(), true
		}
	}
	return nil, false
}

// Len returns the number of configured entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.users)
}
