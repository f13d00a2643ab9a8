package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokerage-api/internal/handlers"
	"brokerage-api/internal/middleware"
)

type Router struct {
	engine         *gin.Engine
	orderHandler   *handlers.OrderHandler
	accountHandler *handlers.AccountHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware *middleware.AuthMiddleware
	logMiddleware  *middleware.LoggingMiddleware
}

type RouterConfig struct {
	Debug          bool
	CORSEnabled    bool
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

func NewRouter(
	orderHandler *handlers.OrderHandler,
	accountHandler *handlers.AccountHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	logMiddleware *middleware.LoggingMiddleware,
	config *RouterConfig,
) *Router {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:         gin.New(),
		orderHandler:   orderHandler,
		accountHandler: accountHandler,
		healthHandler:  healthHandler,
		authMiddleware: authMiddleware,
		logMiddleware:  logMiddleware,
	}
}

func (r *Router) SetupRoutes(config *RouterConfig) {
	r.setupGlobalMiddleware(config)
	r.setupHealthRoutes(config)

	v1 := r.engine.Group("/api/v1")
	r.setupAPIRoutes(v1)
}

func (r *Router) setupGlobalMiddleware(config *RouterConfig) {
	r.engine.Use(r.logMiddleware.Recovery())
	r.engine.Use(r.logMiddleware.StructuredLogging())

	if config.CORSEnabled {
		corsConfig := cors.Config{
			AllowOrigins:     config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowAllOrigins = true
		}
		r.engine.Use(cors.New(corsConfig))
	}
}

func (r *Router) setupHealthRoutes(config *RouterConfig) {
	health := r.engine.Group("/health")
	{
		health.GET("", r.healthHandler.Health)
		health.GET("/live", r.healthHandler.Liveness)
		health.GET("/ready", r.healthHandler.Readiness)
	}

	if config.MetricsEnabled {
		path := config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}
}

func (r *Router) setupAPIRoutes(v1 *gin.RouterGroup) {
	v1.Use(r.authMiddleware.ValidateToken())

	orders := v1.Group("/orders")
	{
		orders.POST("", r.orderHandler.SubmitOrder)
		orders.GET("", r.orderHandler.ListOrders)
		orders.GET("/:id", r.orderHandler.GetOrder)
	}

	// Review actions require a broker or admin role
	review := v1.Group("/orders")
	review.Use(r.authMiddleware.RequireAnyRole("broker", "admin"))
	{
		review.POST("/:id/approve", r.orderHandler.ApproveOrder)
		review.POST("/:id/reject", r.orderHandler.RejectOrder)
		review.POST("/:id/execute", r.orderHandler.ExecuteOrder)
	}

	account := v1.Group("/account")
	{
		account.GET("", r.accountHandler.GetSummary)
		account.GET("/transactions", r.accountHandler.ListTransactions)
		account.POST("/deposit", r.accountHandler.Deposit)
		account.POST("/withdraw", r.accountHandler.Withdraw)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
