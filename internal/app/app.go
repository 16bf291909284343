package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"castella/internal/auth"
	"castella/internal/backoffice"
	"castella/internal/config"
	"castella/internal/db"
	"castella/internal/gateway"
	httpserver "castella/internal/http"
	"castella/internal/logging"
	"castella/internal/storage"
)

const insecureSecret = "change-me"

// Application wires together config, client storage, and the HTTP console.
type Application struct {
	cfg    config.Config
	log    *zap.Logger
	dbPool *db.Pool
	redis  *redis.Client
	srv    *httpserver.Server
}

func NewApplication(ctx context.Context, cfg config.Config, log *zap.Logger) (*Application, error) {
	log = logging.OrNop(log)

	if _, err := gateway.New(cfg.APIBaseURL, nil); err != nil {
		return nil, err
	}
	if cfg.ConsoleSecret == insecureSecret {
		if cfg.Env != "development" {
			return nil, errors.New("CONSOLE_SECRET must be set outside development")
		}
		log.Warn("console cookies are signed with the development secret")
	}

	a := &Application{cfg: cfg, log: log}
	provider, health, err := a.openStorage(ctx)
	if err != nil {
		a.Shutdown(ctx)
		return nil, err
	}

	a.srv = httpserver.NewServer(cfg, httpserver.Deps{
		Storage:  provider,
		JWT:      auth.NewJWTManager(cfg.ConsoleSecret, cfg.SessionTTL),
		Services: a.services,
		Health:   health,
		Log:      log,
	})
	return a, nil
}

// services builds the resource views for one request, authenticated by that request's
// session store.
func (a *Application) services(tokens gateway.TokenSource) (*backoffice.Service, error) {
	client, err := gateway.New(a.cfg.APIBaseURL, tokens, gateway.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	return backoffice.NewService(client, a.log), nil
}

func (a *Application) openStorage(ctx context.Context) (storage.Provider, func(context.Context) error, error) {
	switch a.cfg.StorageBackend {
	case "", config.StorageMemory:
		a.log.Warn("console sessions are kept in memory and are lost on restart")
		return storage.NewMemoryProvider(), nil, nil

	case config.StoragePostgres:
		if a.cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres session backend")
		}
		pool, err := db.NewPool(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.dbPool = pool
		if err := pool.EnsureStorageSchema(ctx); err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresProvider(pool), pool.Ping, nil

	case config.StorageRedis:
		client, err := storage.ConnectRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		a.redis = client
		health := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return storage.NewRedisProvider(client, a.cfg.StorageTTL), health, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", a.cfg.StorageBackend)
	}
}

func (a *Application) Start() error {
	a.log.Info("starting console",
		zap.String("port", a.cfg.Port),
		zap.String("api_base_url", a.cfg.APIBaseURL),
		zap.String("session_backend", a.cfg.StorageBackend),
	)
	return a.srv.Start()
}

func (a *Application) Shutdown(ctx context.Context) {
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			a.log.Warn("console shutdown", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
