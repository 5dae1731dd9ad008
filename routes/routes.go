package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"api-yt/config"
	"api-yt/handlers"
	"api-yt/models"
)

func SetupRoutes(cfg *config.Config, videoHandler *handlers.VideoHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Recovery keeps panics inside the JSON error contract.
	router.Use(gin.CustomRecovery(handlers.RecoveryHandler))

	// Add logger middleware
	router.Use(gin.Logger())

	// CORS middleware: every response, including preflight, is callable from
	// any browser origin.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// API routes
	api := router.Group("/api")
	if cfg.RequestsPerSecond > 0 {
		api.Use(rateLimit(cfg.RequestsPerSecond, cfg.RateBurst))
	}
	{
		api.POST("/info", videoHandler.GetInfo)
		api.GET("/thumbnail/:video_id", videoHandler.GetThumbnail)
		api.POST("/download", videoHandler.Download)
		api.GET("/detect_playlist", videoHandler.DetectPlaylist)

		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	})

	return router
}

// rateLimit applies one process-wide token bucket to the API group.
func rateLimit(perSecond, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: "Too many requests",
			})
			return
		}
		c.Next()
	}
}
