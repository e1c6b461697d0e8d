package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"parking/internal/handler"
	"parking/internal/middleware"
	internalRedis "parking/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	SessionHandler   *handler.SessionHandler
	DayProfitHandler *handler.DayProfitHandler
	TariffHandler    *handler.TariffHandler
	Idempotency      internalRedis.IdempotencyStoreInterface // nil disables idempotent replay
	NewRelicApp      *newrelic.Application
	Logger           logrus.FieldLogger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributesMiddleware())
	}

	router.Use(middleware.IdempotencyMiddleware(deps.Idempotency, deps.Logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Session routes.
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", deps.SessionHandler.Start)
			sessions.GET("", deps.SessionHandler.GetAll)
			sessions.GET("/:id", deps.SessionHandler.GetByID)
			sessions.PUT("/:id/stop", deps.SessionHandler.StopByID)
			sessions.GET("/:id/valid", deps.SessionHandler.TicketValidByID)
			sessions.GET("/:id/amount", deps.SessionHandler.AmountDueByID)

			sessions.GET("/plate/:plate", deps.SessionHandler.GetByPlate)
			sessions.PUT("/plate/:plate/stop", deps.SessionHandler.StopByPlate)
			sessions.GET("/plate/:plate/valid", deps.SessionHandler.TicketValidByPlate)
			sessions.GET("/plate/:plate/amount", deps.SessionHandler.AmountDueByPlate)
		}

		// Day profit routes.
		days := v1.Group("/days/:year/:month/:day")
		{
			days.GET("/show/:currency", deps.DayProfitHandler.Show)
			days.GET("/profit/:currency", deps.DayProfitHandler.Profit)
			days.POST("/profit/:currency", deps.DayProfitHandler.Upsert)
		}

		// Tariff routes.
		v1.GET("/tariff/quote", deps.TariffHandler.Quote)
	}

	return router
}
