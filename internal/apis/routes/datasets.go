package routes

import (
	"datachat-ai/internal/di"
	"log"

	"github.com/gin-gonic/gin"
)

func SetupDatasetRoutes(router *gin.Engine) {
	datasetHandler, err := di.GetDatasetHandler()
	if err != nil {
		log.Fatalf("Failed to get dataset handler: %v", err)
	}

	datasets := router.Group("/api/datasets")
	{
		datasets.POST("", datasetHandler.Upload)
		datasets.GET("", datasetHandler.List)
		datasets.DELETE("/:name", datasetHandler.Delete)
	}
}
