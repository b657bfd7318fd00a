package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/lims-api/internal/handler"
	"github.com/jwalitptl/lims-api/internal/middleware"
)

// Handler registers a group of routes under the API prefix.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled  bool
	RequestsPerSecond float64
	Burst             int
	CORS              middleware.CORSConfig
	Gatherer          prometheus.Gatherer
}

type Router struct {
	engine *gin.Engine
}

func NewRouter(cfg Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidations()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
	)
	if cfg.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst).Handler())
	}

	engine.GET("/health", handler.Health)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
