// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/api"
	"github.com/99minutos/proxy-auth/internal/api/handler"
	"github.com/99minutos/proxy-auth/internal/api/metrics"
	"github.com/99minutos/proxy-auth/internal/core/service"
	"github.com/99minutos/proxy-auth/internal/infrastructure/queue"
	"github.com/99minutos/proxy-auth/internal/pkg/config"
	"github.com/99minutos/proxy-auth/pkg/logger"
)

type App struct {
	echo       *echo.Echo
	httpServer *http.Server
	dispatcher *queue.Dispatcher
	infra      *infra
	log        zerolog.Logger
}

// New connects the configured backends and builds the router. The
// returned App owns every connection it opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	return newApp(ctx, cfg, log, prometheus.DefaultRegisterer)
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*App, error) {
	in, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	resolver := service.NewResolver(in.People, in.Groups, resolverConfig(cfg, in), logger.WithComponent(log, "resolver"))

	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, in.Events, logger.WithComponent(log, "audit"))
	dispatcher.Start(context.WithoutCancel(ctx))

	binder := service.NewBinder(metrics.NewInstrumentedResolver(resolver), dispatcher, logger.WithComponent(log, "binder"))
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	e := api.NewRouter(api.Deps{
		Log:          log,
		Binder:       binder,
		People:       in.People,
		Tokens:       tokens,
		SessionStore: in.Sessions,
		SessionName:  cfg.Session.Name,
		SessionAge:   cfg.Session.MaxAge,
		Proxy: handler.ProxyAuthOptions{
			Header:      cfg.Proxy.Header,
			AfterLogin:  cfg.Proxy.AfterLogin,
			AfterLogout: cfg.Proxy.AfterLogout,
		},
		Mongo:      in.MongoDB,
		Redis:      in.Redis,
		Registerer: reg,
	})

	return &App{
		echo: e,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dispatcher: dispatcher,
		infra:      in,
		log:        log,
	}, nil
}

func resolverConfig(cfg *config.Config, in *infra) service.ResolverConfig {
	policy := service.CreationPolicy{
		Enabled: cfg.Create.Enabled,
		Group:   cfg.Create.GroupSpec(),
	}
	if cfg.Create.FirstNameHeader != "" || cfg.Create.LastNameHeader != "" {
		policy.Before = service.HeaderNames(cfg.Create.FirstNameHeader, cfg.Create.LastNameHeader)
	}
	return service.ResolverConfig{
		Hardcoded:    service.NewRegistry(cfg.Proxy.Hardcoded),
		Admin:        cfg.Proxy.Admin,
		Create:       policy,
		AfterResolve: service.MergeGroupPermissions(in.Groups),
	}
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains the audit queue, then closes
// the backend connections.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.httpServer.Shutdown(ctx)
	a.dispatcher.Stop()
	if cerr := a.infra.close(ctx); err == nil {
		err = cerr
	}
	return err
}
