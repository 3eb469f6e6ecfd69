package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/proxy-auth/internal/app"
	"github.com/99minutos/proxy-auth/internal/pkg/config"
	"github.com/99minutos/proxy-auth/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "proxy-auth",
	})
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger.Get())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.StoreBackend).
		Str("session", cfg.Session.Backend).
		Str("header", cfg.Proxy.Header).
		Msg("proxy-auth started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("proxy-auth stopped cleanly")
}
