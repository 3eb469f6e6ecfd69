package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/proxy-auth/internal/api/middleware"
	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
)

// IdentityHandler exposes the resolved identity to browser clients and
// downstream services.
type IdentityHandler struct {
	people ports.PersonStore
	tokens ports.TokenService
}

func NewIdentityHandler(people ports.PersonStore, tokens ports.TokenService) *IdentityHandler {
	return &IdentityHandler{people: people, tokens: tokens}
}

type tokenRequest struct {
	TTLSeconds int `json:"ttl_seconds" validate:"omitempty,min=60,max=86400"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me returns the identity attached to the request.
//
// @Summary      Current identity
// @Tags         identity
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, id)
}

// Token mints a short-lived signed token for the attached identity.
//
// @Summary      Issue identity token
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  false  "Optional lifetime"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/token [post]
func (h *IdentityHandler) Token(c echo.Context) error {
	if !h.tokens.Enabled() {
		return domain.ErrTokensDisabled
	}
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, exp, err := h.tokens.Issue(id, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp})
}

// Person returns the stored record for a username. Admin only.
//
// @Summary      Look up a person
// @Tags         identity
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.Person
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/people/{username} [get]
func (h *IdentityHandler) Person(c echo.Context) error {
	p, err := h.people.FindPerson(c.Request().Context(), c.Param("username"))
	if errors.Is(err, domain.ErrPersonNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "person not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
