package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/algiers-transit/arrivals-backend-go/internal/handler"
	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/middleware"
)

// Handlers bundles the wired endpoint handlers
type Handlers struct {
	Arrivals *handler.ArrivalsHandler
	Reports  *handler.ReportHandler
	Tracking *handler.TrackingHandler
}

// SetupRouter builds the HTTP surface
func SetupRouter(h Handlers, collector *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS for the browser presentation layer
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Device-Id, X-Device-Fingerprint")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Arrivals backend is running",
		})
	})

	if collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		stations := api.Group("/stations")
		{
			stations.GET("", h.Arrivals.ListStations)
			stations.GET("/:id/arrivals", h.Arrivals.GetArrivals)
		}

		reports := api.Group("/reports")
		// Transport-level guard; the crowd engine rate-limits per device on top
		reports.Use(middleware.RateLimit(30, time.Minute))
		{
			reports.POST("", h.Reports.Submit)
			reports.GET("/stats", h.Reports.Stats)
		}

		tracking := api.Group("/tracking")
		{
			tracking.POST("/start", h.Tracking.Start)
			tracking.POST("/fix", h.Tracking.Fix)
			tracking.POST("/stop", h.Tracking.Stop)
			tracking.GET("/status", h.Tracking.Status)
		}
	}

	return r
}
