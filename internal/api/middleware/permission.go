package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// RequireIdentity rejects anonymous requests with domain.ErrUnauthenticated.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RequirePermission enforces that the attached identity holds every named
// permission. Missing permissions yield domain.ErrForbidden.
func RequirePermission(perms ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			for _, p := range perms {
				if !id.Permissions.Has(p) {
					return domain.ErrForbidden
				}
			}
			return next(c)
		}
	}
}
