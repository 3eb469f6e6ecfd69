package ports

import (
	"context"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// PersonStore abstracts the persistent collection of person records.
type PersonStore interface {
	// FindPerson returns the record of type "person" whose username equals
	// the input byte for byte, or domain.ErrPersonNotFound.
	FindPerson(ctx context.Context, username string) (*domain.Person, error)

	// SavePerson inserts or updates p. A record without an ID is new and
	// gets a durable identifier. It returns domain.ErrPersonExists when
	// another record already holds the username, and domain.ErrIDConflict
	// when the ID belongs to a different person.
	SavePerson(ctx context.Context, p *domain.Person) (*domain.Person, error)
}
