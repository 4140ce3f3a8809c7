package handler

import (
	"net/http"

	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "listings-service"

func SetupRoutes(listingHandler *ListingHandler, reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/categories", listingHandler.ListCategories)

	listings := router.Group("/listings")
	{
		listings.GET("", listingHandler.ListListings)
		listings.GET("/:id", listingHandler.GetListing)

		protected := listings.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", listingHandler.CreateListing)
			protected.PUT("/:id", listingHandler.UpdateListing)
			protected.DELETE("/:id", listingHandler.DeleteListing)
			protected.POST("/:id/reviews", reviewHandler.CreateReview)
			protected.DELETE("/:id/reviews/:review_id", reviewHandler.DeleteReview)
		}
	}

	return router
}
