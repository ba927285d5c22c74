package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries what the engine needs besides the handlers
type EngineConfig struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter middleware.Limiter
	// Meter is optional; nil disables HTTP metrics
	Meter  metric.Meter
	Health *handler.HealthHandler
}

// NewEngine builds the gin engine with the middleware chain, the health and
// documentation endpoints and the versioned API routes.
func NewEngine(ec EngineConfig, h Handlers) (*gin.Engine, error) {
	cfg := ec.Config
	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.Recovery(ec.Logger))
	engine.Use(logger.GinMiddleware(ec.Logger))

	secure := middleware.DefaultSecurityConfig()
	secure.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.Secure(secure))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if ec.RateLimiter != nil {
		engine.Use(middleware.RateLimit(ec.RateLimiter, ec.Logger))
	}
	engine.Use(middleware.JWTAuth(middleware.DefaultJWTConfig(ec.JWTService, ec.Blacklist, ec.Logger)))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.SpanEnricher())
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
	httpMetrics, err := middleware.HTTPMetrics(ec.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	engine.Use(httpMetrics)

	if ec.Health != nil {
		engine.GET("/health", ec.Health.Health)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerGuard(cfg.Swagger.Enabled, cfg.Swagger.AllowedIPs),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Resource not found", middleware.GetRequestID(c)))
	})

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range APIGroups(h) {
		r.Register(group)
	}
	r.Setup()

	return engine, nil
}
