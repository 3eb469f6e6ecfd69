package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/proxy-auth/internal/core/ports"
	"github.com/99minutos/proxy-auth/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/proxy-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/proxy-auth/internal/infrastructure/db/redis"
	"github.com/99minutos/proxy-auth/internal/infrastructure/queue"
	"github.com/99minutos/proxy-auth/internal/pkg/config"
)

// infra holds the stores selected by configuration and the connections
// behind them. Mongo and Redis stay nil when their backend is not used.
type infra struct {
	People   ports.PersonStore
	Groups   ports.GroupStore
	Events   ports.LoginEventSink
	Sessions sessions.Store

	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *goredis.Client
}

func setupInfra(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*infra, error) {
	in := &infra{}

	switch cfg.StoreBackend {
	case "memory":
		in.People = memory.NewPersonStore()
		in.Groups = memory.NewGroupStore()
		in.Events = queue.NewLogSink(log)
		log.Warn().Msg("using in-memory person store; records are lost on restart")
	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		people := mongodb.NewPersonRepository(db)
		groups := mongodb.NewGroupRepository(db)
		events := mongodb.NewLoginEventRepository(db)
		if err := mongodb.EnsureIndexes(ctx, people, groups, events); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		in.People, in.Groups, in.Events = people, groups, events
		in.MongoClient, in.MongoDB = client, db
	}

	opts := sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		log.Warn().Msg("SESSION_SECRET not set; generated an ephemeral key, sessions will not survive a restart")
	}

	switch cfg.Session.Backend {
	case "redis":
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			in.close(ctx)
			return nil, err
		}
		in.Redis = client
		in.Sessions = redisdb.NewSessionStore(client, opts, secret)
	default:
		store := sessions.NewCookieStore(secret)
		store.Options = &opts
		store.MaxAge(opts.MaxAge)
		in.Sessions = store
	}

	return in, nil
}

func (in *infra) close(ctx context.Context) error {
	var firstErr error
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("redis close: %w", err)
		}
	}
	if in.MongoClient != nil {
		if err := in.MongoClient.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("mongo disconnect: %w", err)
		}
	}
	return firstErr
}
