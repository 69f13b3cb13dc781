package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/joselyntm20/userslambda/internal/cache"
	"github.com/joselyntm20/userslambda/internal/config"
	"github.com/joselyntm20/userslambda/internal/db"
	httpx "github.com/joselyntm20/userslambda/internal/http"
	"github.com/joselyntm20/userslambda/internal/observability"
	"github.com/joselyntm20/userslambda/internal/repo/memory"
	"github.com/joselyntm20/userslambda/internal/repo/mongodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is everything one process instance shares across requests.
type App struct {
	Router *gin.Engine

	closers []func(ctx context.Context) error
}

// New wires store, cache, metrics and router from cfg. It does not connect
// to the database; the first store call does.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{}

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{Prom: prom, Metrics: reg}

	switch cfg.StoreBackend {
	case config.StoreMongo:
		manager := db.NewManager(db.Config{
			URI:            cfg.MongoURI,
			Name:           cfg.DBName,
			ConnectTimeout: cfg.ConnectTimeout,
			SocketTimeout:  cfg.SocketTimeout,
		})
		manager.OnConnect(func(err error) {
			prom.ObserveConnect(err)
			if err != nil {
				log.Error("database connect failed", "err", err, "db", cfg.DBName)
				return
			}
			log.Info("database connected", "db", cfg.DBName)
		})

		deps.Users = mongodb.NewUsersRepo(manager, prom)
		deps.Ping = manager.Ping
		a.closers = append(a.closers, manager.Disconnect)

	case config.StoreMemory:
		repo := memory.NewUsersRepo()
		deps.Users = repo
		deps.Ping = repo.Ping

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.CacheBackend {
	case config.CacheNone, "":
	case config.CacheMemory:
		deps.Cache = cache.New(cfg.CacheTTL)
	case config.CacheRedis:
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		deps.Cache = rc
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	a.Router = httpx.NewRouter(log, cfg, deps)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
