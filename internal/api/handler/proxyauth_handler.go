package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/api/metrics"
	"github.com/99minutos/proxy-auth/internal/api/middleware"
	"github.com/99minutos/proxy-auth/internal/api/websession"
	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/service"
)

// ProxyAuthOptions configures the login and logout routes.
type ProxyAuthOptions struct {
	Header      string // trusted identity header set by the proxy
	AfterLogin  string
	AfterLogout string
}

// ProxyAuthHandler serves the login and logout routes behind the proxy.
type ProxyAuthHandler struct {
	binder *service.Binder
	open   websession.Opener
	opts   ProxyAuthOptions
	log    zerolog.Logger
}

func NewProxyAuthHandler(binder *service.Binder, open websession.Opener, opts ProxyAuthOptions, log zerolog.Logger) *ProxyAuthHandler {
	if opts.Header == "" {
		opts.Header = "X-Remote-User"
	}
	if opts.AfterLogin == "" {
		opts.AfterLogin = "/"
	}
	return &ProxyAuthHandler{binder: binder, open: open, opts: opts, log: log}
}

// Login binds the username asserted by the proxy to the session.
//
// @Summary      Log in through the trusted proxy
// @Description  Reads the trusted identity header, resolves the user and binds it to the session.
// @Tags         session
// @Produce      html
// @Param        next  query     string  false  "Local path to redirect to after login"
// @Success      302   {string}  string  "redirect to the post-login URL"
// @Failure      403   {string}  string  "insufficient privileges page"
// @Failure      500   {string}  string  "proxy misconfiguration diagnostic"
// @Router       /login [get]
func (h *ProxyAuthHandler) Login(c echo.Context) error {
	sess, err := h.open(c)
	if err != nil {
		return err
	}

	req := c.Request()
	out := h.binder.Login(service.WithRequest(req.Context(), req), sess, req.Header.Get(h.opts.Header))
	metrics.SessionOutcomesTotal.WithLabelValues("login", string(out.State())).Inc()

	switch {
	case errors.Is(out.Err, domain.ErrMisconfigured):
		reason := "missing"
		if errors.Is(out.Err, domain.ErrHeaderNull) {
			reason = "null"
		}
		metrics.MisconfigurationsTotal.WithLabelValues(reason).Inc()
		return c.HTML(http.StatusInternalServerError, diagnosticPage(domain.Diagnostic(out.Err)))
	case out.Err != nil:
		return c.HTML(http.StatusForbidden, insufficientPage)
	}

	middleware.SetIdentity(c, out.Identity)
	return c.Redirect(http.StatusFound, h.loginTarget(c.QueryParam("next")))
}

// Logout destroys the session.
//
// @Summary      Log out
// @Tags         session
// @Success      302  {string}  string  "redirect to the post-logout URL or root"
// @Router       /logout [get]
func (h *ProxyAuthHandler) Logout(c echo.Context) error {
	sess, err := h.open(c)
	if err != nil {
		return err
	}

	req := c.Request()
	out := h.binder.Logout(service.WithRequest(req.Context(), req), sess)
	metrics.SessionOutcomesTotal.WithLabelValues("logout", string(out.State())).Inc()

	target := "/"
	if out.HadSession && h.opts.AfterLogout != "" {
		target = h.opts.AfterLogout
	}
	return c.Redirect(http.StatusFound, target)
}

// loginTarget accepts only local absolute paths to avoid open redirects.
func (h *ProxyAuthHandler) loginTarget(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return h.opts.AfterLogin
	}
	return next
}
