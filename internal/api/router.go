package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/combined-routes/internal/config"
	"github.com/jengzang/combined-routes/internal/handler"
	"github.com/jengzang/combined-routes/internal/middleware"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/internal/timeutil"
)

// SetupRouter builds the preview server routes
func SetupRouter(cfg *config.Config, catalog *service.CatalogService, clock timeutil.Clock, logger *log.Logger) *gin.Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "combined-routes preview server is running",
		})
	})

	protected := r.Group("/",
		middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, clock)),
		middleware.Auth(cfg.JWTSecret),
	)

	runs := handler.NewRunHandler(catalog)
	v1 := protected.Group("/api/v1")
	{
		v1.GET("/runs", runs.GetRuns)
		v1.GET("/runs/:id", runs.GetRun)
		v1.GET("/runs/:id/tracks", runs.GetRunTracks)
	}

	// rendered maps, videos and reports
	protected.Static("/artifacts", cfg.ArtifactsDir)

	return r
}
