package ports

import (
	"context"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// GroupProvisioner creates groups on demand.
type GroupProvisioner interface {
	// EnsureGroup returns the group with the given name, creating it with
	// the given permissions if absent. Concurrent calls for one name must
	// converge on a single group.
	EnsureGroup(ctx context.Context, name string, permissions []string) (*domain.Group, error)
}

// GroupReader looks up existing groups.
type GroupReader interface {
	// FindGroups returns the groups whose IDs are listed. Unknown IDs are skipped.
	FindGroups(ctx context.Context, ids []string) ([]*domain.Group, error)
}

// GroupStore is the full group collection.
type GroupStore interface {
	GroupProvisioner
	GroupReader
}
