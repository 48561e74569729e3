package router

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers of the marketplace API
type Handlers struct {
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Wallet   *handler.WalletHandler
	Shipping *handler.ShippingHandler
	Settings *handler.SettingsHandler
	Health   *handler.HealthHandler
}

// Options configure the engine built by NewEngine
type Options struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	JWT         *auth.JWTService
	Meter       *telemetry.MeterProvider
	ServiceName string
	Tracing     bool
	Profiling   bool
	// WriteLimiter throttles checkout and withdrawal submissions per
	// principal; nil disables throttling.
	WriteLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and every
// marketplace route mounted under /api/v1.
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = opts.Tracing
	if opts.ServiceName != "" {
		tracing.ServiceName = opts.ServiceName
	}
	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = opts.Profiling

	jwtCfg := middleware.DefaultJWTConfig(opts.JWT)
	jwtCfg.Logger = log

	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(tracing),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: opts.Meter, Enabled: opts.Meter != nil, Logger: log}),
		middleware.Locale(),
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
		middleware.Timeout(opts.HTTP.RequestTimeout),
		middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		middleware.TracingAttributeInjector(),
		middleware.ProfilingWithConfig(profiling),
	)

	NewRouter(engine).Register(routeGroups(h, opts.WriteLimiter)...).Setup()
	return engine
}

func routeGroups(h Handlers, limiter *middleware.RateLimiter) []RouteRegistrar {
	throttle := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		throttle = middleware.RateLimitByKey(limiter, middleware.RateLimitKey)
	}
	buyerOnly := middleware.RequireRole(auth.RoleBuyer)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Health)
	system.GET("/ping", h.Health.Ping)

	cartGroup := NewDomainGroup("cart", "/cart").Use(buyerOnly)
	cartGroup.POST("/items", h.Cart.AddItem)
	cartGroup.PATCH("/items/:id", h.Cart.UpdateItem)
	cartGroup.GET("/validate", h.Cart.Validate)

	checkout := NewDomainGroup("checkout", "/checkout").Use(buyerOnly)
	checkout.POST("", throttle, h.Order.Checkout)

	orders := NewDomainGroup("orders", "/orders")
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.Get)
	orders.POST("/:id/cancel", middleware.RequireRole(auth.RoleBuyer, auth.RoleAdmin), h.Order.Cancel)
	orders.PATCH("/:id/status", adminOnly, h.Order.UpdateStatus)

	wallet := NewDomainGroup("wallet", "/wallet").Use(middleware.RequireRole(auth.RoleSeller))
	wallet.GET("", h.Wallet.Get)
	wallet.GET("/transactions", h.Wallet.Transactions)
	wallet.POST("/withdrawals", throttle, h.Wallet.Withdraw)
	wallet.GET("/verify", h.Wallet.Verify)

	shipping := NewDomainGroup("shipping", "/shipping")
	shipping.GET("/quote", h.Shipping.Quote)
	shipping.GET("/options", h.Shipping.Options)
	shipping.GET("/free-shipping", h.Shipping.FreeShipping)

	admin := NewDomainGroup("admin", "/admin").Use(adminOnly)
	settings := admin.Group("settings", "/settings")
	settings.GET("/marketplace", h.Settings.Get)
	settings.PUT("/marketplace", h.Settings.Update)

	return []RouteRegistrar{system, cartGroup, checkout, orders, wallet, shipping, admin}
}
