package routes

import (
	"scanwarden/internal/handlers"
	"scanwarden/internal/services"

	"github.com/gin-gonic/gin"
)

func InitMonitorRoutes(router *gin.RouterGroup, registry services.SiteRegistry) {
	handler := handlers.NewMonitorHandler(registry)

	monitorRoutes := router.Group("/monitor")
	{
		monitorRoutes.POST("", handler.Register)
		monitorRoutes.GET("", handler.Status)
	}
}
