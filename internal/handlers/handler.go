package handlers

import (
	"net/http"

	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/metrics"
	"cookstove_tracker/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	limiter  *RateLimiter
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMetrics records request and domain metrics and serves them at /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithOpenIngestLimiter rate-limits the open ingestion route per stove id.
func WithOpenIngestLimiter(l *RateLimiter) Option {
	return func(h *Handler) { h.limiter = l }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metricsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	api := router.Group("/api")
	h.registerAuthRoutes(api)
	h.registerStoveRoutes(api)
	h.registerUsageRoutes(api)
	h.registerAdminRoutes(api)

	return router
}

func (h *Handler) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.signUp)
		auth.POST("/login", h.signIn)
		auth.GET("/me", h.userIdMiddleware, h.me)
	}
}

func (h *Handler) registerStoveRoutes(api *gin.RouterGroup) {
	stoves := api.Group("/stoves")
	{
		stoves.POST("/data", h.stoveKeyMiddleware, h.ingestData)
		stoves.POST("/data/open", h.ingestOpen)
		stoves.POST("/pair", h.userIdMiddleware, h.pairStove)
		stoves.GET("", h.userIdMiddleware, h.listStoves)
	}
}

func (h *Handler) registerUsageRoutes(api *gin.RouterGroup) {
	usage := api.Group("/usage", h.userIdMiddleware)
	{
		usage.GET("/summary", h.usageSummary)
		usage.GET("/stats", h.usageStats)
		usage.GET("/stove/:stoveId", h.stoveUsage)
	}
}

func (h *Handler) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.userIdMiddleware, h.requireAdmin)
	{
		admin.POST("/stoves/register", h.registerStove)
		admin.GET("/usage", h.adminUsage)
		admin.GET("/users", h.adminUsers)
		admin.GET("/stoves", h.adminStoves)
		admin.GET("/stats", h.adminStats)
		admin.GET("/stats/ws", h.statsStream)
		admin.PATCH("/users/:userId/role", h.changeRole)
		admin.GET("/events", h.getEvents)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "server is running"})
}
