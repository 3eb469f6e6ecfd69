package api

import (
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/99minutos/proxy-auth/docs"
	"github.com/99minutos/proxy-auth/internal/api/handler"
	"github.com/99minutos/proxy-auth/internal/api/middleware"
	"github.com/99minutos/proxy-auth/internal/api/websession"
	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
	"github.com/99minutos/proxy-auth/internal/core/service"
	"github.com/99minutos/proxy-auth/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Log          zerolog.Logger
	Binder       *service.Binder
	People       ports.PersonStore
	Tokens       ports.TokenService
	SessionStore sessions.Store
	SessionName  string
	SessionAge   int
	Proxy        handler.ProxyAuthOptions

	// Optional, probed by /health/ready when set.
	Mongo *mongo.Database
	Redis *redis.Client

	// Registerer for the HTTP metrics; defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}

	open := websession.NewOpener(d.SessionName, d.SessionAge)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "proxyauth",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(session.Middleware(d.SessionStore))
	e.Use(middleware.SessionAuth(d.Binder, open, skipSessionAuth, d.Log))
	e.Use(middleware.RequestLogger(d.Log))

	// --- Session routes ---
	proxyHandler := handler.NewProxyAuthHandler(d.Binder, open, d.Proxy, d.Log)
	e.GET("/login", proxyHandler.Login)
	e.GET("/logout", proxyHandler.Logout)

	// --- Identity API ---
	identityHandler := handler.NewIdentityHandler(d.People, d.Tokens)
	apiGroup := e.Group("/api", middleware.Bearer(d.Tokens))
	apiGroup.GET("/me", identityHandler.Me, middleware.RequireIdentity())
	apiGroup.POST("/token", identityHandler.Token, middleware.RequireIdentity())
	apiGroup.GET("/people/:username", identityHandler.Person, middleware.RequirePermission(domain.PermissionAdmin))

	// --- Ops (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// skipSessionAuth excludes routes that establish or destroy the session
// themselves, plus the ops endpoints.
func skipSessionAuth(c echo.Context) bool {
	p := c.Request().URL.Path
	switch p {
	case "/login", "/logout", "/health", "/health/ready", "/metrics":
		return true
	}
	return strings.HasPrefix(p, "/swagger/")
}
