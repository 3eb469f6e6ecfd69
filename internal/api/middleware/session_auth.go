package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/api/metrics"
	"github.com/99minutos/proxy-auth/internal/api/websession"
	"github.com/99minutos/proxy-auth/internal/core/service"
)

// SessionAuth re-resolves the username bound to the session before each
// request. On failure the session is destroyed and the request continues
// unauthenticated.
func SessionAuth(binder *service.Binder, open websession.Opener, skipper echomiddleware.Skipper, log zerolog.Logger) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			sess, err := open(c)
			if err != nil {
				log.Error().Err(err).Msg("session unavailable, continuing unauthenticated")
				return next(c)
			}

			req := c.Request()
			out := binder.Reauthenticate(service.WithRequest(req.Context(), req), sess)
			if len(out.Trail) > 1 {
				metrics.SessionOutcomesTotal.WithLabelValues("reauth", string(out.State())).Inc()
			}
			if out.Identity != nil {
				SetIdentity(c, out.Identity)
			}
			return next(c)
		}
	}
}
