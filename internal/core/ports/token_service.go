package ports

import (
	"time"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// TokenService issues and verifies signed identity tokens for downstream services.
type TokenService interface {
	Issue(identity *domain.Identity, ttl time.Duration) (string, time.Time, error)
	Parse(token string) (*domain.Identity, error)
	Enabled() bool
}
