package routes

import (
	"scanwarden/internal/handlers"
	"scanwarden/internal/services"

	"github.com/gin-gonic/gin"
)

func InitScanRoutes(router *gin.RouterGroup, scanner services.Scanner) {
	handler := handlers.NewScanHandler(scanner)

	scanRoutes := router.Group("/scans")
	{
		scanRoutes.POST("", handler.FullScan)
		scanRoutes.POST("/quick", handler.QuickScan)
	}
}
