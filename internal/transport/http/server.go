package http

import (
	"github.com/gin-gonic/gin"

	appsvc "heysera/internal/app"
	"heysera/internal/bootstrap"
	"heysera/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	chatService := appsvc.NewChatService(
		app.Store,
		app.Gateway,
		app.Appender,
		app.HistoryCache,
		app.Counters,
	)
	documentService := appsvc.NewDocumentService(app.Store, app.Gateway, app.Counters)

	chatHandler := handler.NewChatHandler(chatService)
	documentHandler := handler.NewDocumentHandler(documentService)
	adminHandler := handler.NewAdminHandler(app.Store, app.Counters)
	healthHandler := handler.NewHealthHandler(app)

	api := router.Group("/api")
	api.POST("/chat", chatHandler.SendMessage)
	api.POST("/upload", documentHandler.Upload)
	api.GET("/chat/:id/history", chatHandler.GetHistory)
	api.GET("/chat/:id/documents", chatHandler.GetDocuments)
	api.GET("/chats", chatHandler.ListChats)
	api.DELETE("/chat/:id", chatHandler.DeleteChat)
	api.POST("/backup", adminHandler.Backup)
	api.GET("/health", healthHandler.Check)
	api.GET("/stats", adminHandler.Stats)

	return router
}
