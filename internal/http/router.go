package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/joselyntm20/userslambda/internal/cache"
	"github.com/joselyntm20/userslambda/internal/config"
	"github.com/joselyntm20/userslambda/internal/http/handlers"
	"github.com/joselyntm20/userslambda/internal/http/middlewares"
	"github.com/joselyntm20/userslambda/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Users handlers.UserStore
	// nil disables the read cache
	Cache cache.Store
	// readiness probe; nil is always ready
	Ping func(ctx context.Context) error

	Prom    *observability.Prom
	Metrics prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if cfg.TracingEnabled() {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LambdaContext())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	// users
	usersHandler := handlers.NewUsersHandlerWithCache(deps.Users, deps.Cache)

	r.POST("/users", usersHandler.CreateUser)
	r.GET("/users", usersHandler.ListUsers)
	r.GET("/users/:id", usersHandler.GetUserByID)
	r.PUT("/users/:id", usersHandler.UpdateUser)
	r.DELETE("/users/:id", usersHandler.DeleteUser)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	return r
}
