package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"pethotel/internal/handler"
	"pethotel/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CatalogHandler  *handler.CatalogHandler
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
	RedisClient     *redis.Client // Optional: nil disables idempotency replay
	NewRelicApp     *newrelic.Application
	MetricsGatherer prometheus.Gatherer
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.AuthMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.BookingAttributesMiddleware())
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Catalog routes.
		v1.GET("/rooms", deps.CatalogHandler.ListRooms)
		v1.GET("/add-ons", deps.CatalogHandler.ListAddOns)
		v1.GET("/taxi-services", deps.CatalogHandler.ListTaxiServices)
		v1.GET("/routes", deps.CatalogHandler.ListRoutes)

		// Shared taxi runs.
		schedules := v1.Group("/schedules")
		{
			schedules.GET("", deps.CatalogHandler.ListSchedules)
			schedules.GET("/dates", deps.CatalogHandler.AvailableDates)
			schedules.GET("/:id", deps.CatalogHandler.GetSchedule)
			schedules.POST("/:id/cancel", deps.CatalogHandler.CancelSchedule)
		}

		// Quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("/hotel", deps.CartHandler.QuoteHotel)
			quotes.POST("/vip-taxi", deps.CartHandler.QuoteVipTaxi)
			quotes.POST("/shared-taxi", deps.CartHandler.QuoteSharedTaxi)
		}

		// Cart routes.
		cart := v1.Group("/cart")
		{
			cart.GET("", deps.CartHandler.GetCart)
			cart.DELETE("", deps.CartHandler.ClearCart)
			cart.POST("/hotel", deps.CartHandler.AddHotel)
			cart.POST("/vip-taxi", deps.CartHandler.AddVipTaxi)
			cart.POST("/shared-taxi", deps.CartHandler.AddSharedTaxi)
			cart.DELETE("/items/:id", deps.CartHandler.RemoveItem)
			cart.POST("/items/:id/requote", deps.CartHandler.RequoteItem)
		}

		// Checkout routes.
		v1.POST("/checkout", deps.CheckoutHandler.Complete)
		checkouts := v1.Group("/checkouts")
		{
			checkouts.POST("", deps.CheckoutHandler.StartCheckout)
			checkouts.GET("/:id", deps.CheckoutHandler.GetCheckout)
			checkouts.POST("/:id/guest", deps.CheckoutHandler.ChooseGuest)
			checkouts.POST("/:id/sign-in", deps.CheckoutHandler.SignIn)
			checkouts.POST("/:id/guest-info", deps.CheckoutHandler.SubmitGuestInfo)
			checkouts.POST("/:id/pay", deps.CheckoutHandler.Pay)
			checkouts.GET("/:id/attempts", deps.CheckoutHandler.ListAttempts)
		}

		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.GET("/reconciliation", deps.OrderHandler.ListReconciliation)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
		}

		v1.POST("/bookings/:id/cancel", deps.OrderHandler.CancelBooking)
	}

	return router
}
