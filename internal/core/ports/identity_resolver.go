package ports

import (
	"context"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// IdentityResolver turns an asserted username into a resolved identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, username string) (*domain.Identity, error)
}
