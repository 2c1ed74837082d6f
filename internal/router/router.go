package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/config"
	"github.com/ikkim/bizreview-backend/internal/app/controller"
	"github.com/ikkim/bizreview-backend/internal/metrics"
	"github.com/ikkim/bizreview-backend/internal/middleware"
)

const metricsPath = "/metrics"

type Router struct {
	businessController *controller.BusinessController
	reviewController   *controller.ReviewController
	systemController   *controller.SystemController
	eventController    *controller.EventController
	rateLimiter        *middleware.RateLimiter
	config             *config.Config
}

func NewRouter(
	businessController *controller.BusinessController,
	reviewController *controller.ReviewController,
	systemController *controller.SystemController,
	eventController *controller.EventController,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		businessController: businessController,
		reviewController:   reviewController,
		systemController:   systemController,
		eventController:    eventController,
		rateLimiter:        rateLimiter,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(metricsPath))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/", r.systemController.Index)
	router.GET("/health", r.systemController.Health)
	router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	if r.eventController != nil {
		router.GET("/ws/events", r.eventController.Stream)
	}

	api := router.Group("")
	api.Use(r.rateLimiter.Handler())

	businesses := api.Group("/businesses")
	{
		businesses.GET("", r.businessController.ListBusinesses)
		businesses.POST("", r.businessController.CreateBusiness)
		businesses.GET("/:id", r.businessController.GetBusiness)
		businesses.PUT("/:id", r.businessController.ReplaceBusiness)
		businesses.DELETE("/:id", r.businessController.DeleteBusiness)
	}

	api.GET("/owners/:id/businesses", r.businessController.ListBusinessesByOwner)

	reviews := api.Group("/reviews")
	{
		reviews.POST("", r.reviewController.CreateReview)
		reviews.GET("/:id", r.reviewController.GetReview)
		reviews.PUT("/:id", r.reviewController.UpdateReview)
		reviews.DELETE("/:id", r.reviewController.DeleteReview)
	}

	api.GET("/users/:id/reviews", r.reviewController.ListReviewsByUser)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
