package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Conversations *ConversationHandler
	FIR           *FIRHandler
	Rights        *RightsHandler
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r gin.IRouter, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		conversations := api.Group("/conversations")
		{
			conversations.POST("", h.Conversations.CreateConversation)
			conversations.GET("/:id", h.Conversations.GetConversation)
			conversations.POST("/:id/messages", h.Conversations.SendMessage)
			conversations.POST("/:id/reset", h.Conversations.ResetConversation)
			conversations.POST("/:id/fir", h.FIR.GenerateFIR)
		}

		api.GET("/jobs/:id", h.FIR.GetJobStatus)
		api.GET("/documents/:id", h.FIR.GetDocument)
		api.GET("/files/:id", h.FIR.GetFile)

		rightsGroup := api.Group("/rights")
		{
			rightsGroup.GET("", h.Rights.SearchRights)
			rightsGroup.GET("/categories", h.Rights.ListCategories)
			rightsGroup.GET("/:id", h.Rights.GetRight)
		}
	}
}
