package routes

import (
	"scanwarden/internal/config"
	"scanwarden/internal/handlers"
	"scanwarden/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// InitRouter wires the API surface. The health probe stays outside the
// authenticated group so liveness checks work without the shared secret and
// independent of daemon readiness.
func InitRouter(cfg *config.Config, scanner services.Scanner, registry services.SiteRegistry, daemonReady func() bool) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type", "X-API-Key"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, handlers.HealthResponse{Status: "ok", DaemonReady: daemonReady()})
	})

	api := router.Group("/api")
	api.Use(APIKeyAuth(cfg.APISecret))
	{
		InitScanRoutes(api, scanner)
		InitMonitorRoutes(api, registry)
	}

	return router
}
