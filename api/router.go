package api

import (
	"net/http"

	"storefront/api/catalog"
	"storefront/api/health"
	"storefront/api/middleware"
	"storefront/api/order"
	outboxapi "storefront/api/outbox"
	"storefront/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers 所有控制器，nil 的不注册
type Controllers struct {
	Health  *health.Controller
	Order   *order.Controller
	Catalog *catalog.Controller
	Outbox  *outboxapi.Controller
}

// Router Route configuration
type Router struct {
	engine      *gin.Engine
	config      *config.Config
	controllers Controllers
	registry    *prometheus.Registry
}

// NewRouter registry 同时用于 HTTP 指标注册和 /metrics 输出
func NewRouter(cfg *config.Config, controllers Controllers, registry *prometheus.Registry) *Router {
	switch {
	case cfg.IsDevelopment():
		gin.SetMode(gin.DebugMode)
	case cfg.App.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware (order is important)
	engine.Use(middleware.RequestIDMiddleware())                      // 1. Generate request ID first
	engine.Use(middleware.RecoveryMiddleware())                       // 2. Recovery middleware
	engine.Use(middleware.LoggingMiddleware())                        // 3. Logging middleware
	engine.Use(middleware.NewHTTPMetrics(registry).Middleware())      // 4. RED metrics
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))                  // 5. CORS
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit)) // 6. Rate limiting

	return &Router{
		engine:      engine,
		config:      cfg,
		controllers: controllers,
		registry:    registry,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		if r.controllers.Health != nil {
			r.controllers.Health.RegisterRoutes(apiGroup)
		}
		if r.controllers.Order != nil {
			r.controllers.Order.RegisterRoutes(apiGroup)
		}
		if r.controllers.Catalog != nil {
			r.controllers.Catalog.RegisterRoutes(apiGroup)
		}
		if r.controllers.Outbox != nil {
			r.controllers.Outbox.RegisterRoutes(apiGroup)
		}
	}

	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
			"metrics": "/metrics",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
