package routes

import (
	"net/http"

	"caterconnect_backend/internal/handlers"
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
	"caterconnect_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	wsAuth gin.HandlerFunc,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	// HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.PublicHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.JobHandler.RegisterRoutes(api)
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.RatingHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
		appHandlers.CronHandler.RegisterRoutes(api)
	}

	// WebSocket
	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(wsAuth)
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}
