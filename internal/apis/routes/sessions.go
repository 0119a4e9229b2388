package routes

import (
	"datachat-ai/internal/di"
	"log"

	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(router *gin.Engine) {
	sessionHandler, err := di.GetSessionHandler()
	if err != nil {
		log.Fatalf("Failed to get session handler: %v", err)
	}

	sessions := router.Group("/api/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.GetByID)
		sessions.DELETE("/:id", sessionHandler.Delete)

		// Question answering and history within a session
		sessions.POST("/:id/ask", sessionHandler.Ask)
		sessions.GET("/:id/messages", sessionHandler.ListMessages)
	}
}
