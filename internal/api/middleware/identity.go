package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

const (
	identityKey = "identity"
	usernameKey = "username"
)

// SetIdentity attaches a resolved identity to the request.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
	c.Set(usernameKey, identity.Username)
}

// IdentityFrom returns the identity attached by SessionAuth, Bearer or the
// login handler.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(identityKey).(*domain.Identity)
	return id, ok && id != nil
}
