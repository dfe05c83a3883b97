package routes

import (
	"Recit/controllers"
	"Recit/middleware"
	"Recit/services/feed"
	"Recit/services/games"
	"Recit/services/store"
	"Recit/services/ws"
	"Recit/sync"
	utils "Recit/utils"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services groups what the handlers are built from.
type Services struct {
	Store  store.Store
	Games  *games.Service
	Feed   *feed.Engine
	Sync   *sync.SyncManager
	Tokens *middleware.Tokens
	Hub    *ws.Hub
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, s Services) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")
	api.Use(middleware.OptionalAuth(s.Tokens))

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(s.Store, s.Tokens))

	api.POST("/signup", controllers.SignUp(s.Store, s.Tokens))

	api.GET("/games", controllers.ListGames(s.Feed))

	api.GET("/games/:id", controllers.GetGame(s.Games))

	api.GET("/games/:id/messages", controllers.ListMessages(s.Feed))

	if s.Hub != nil {
		api.GET("/ws", s.Hub.Handler(s.Tokens))
	}

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired(s.Tokens))
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.Me(s.Store))

		authentication.GET("/me/games", controllers.ListUserGames(s.Feed))

		authentication.POST("/games", controllers.CreateGame(s.Games))

		authentication.PATCH("/games/:id", controllers.UpdateGame(s.Games))

		authentication.DELETE("/games/:id", controllers.DeleteGame(s.Games))

		authentication.POST("/games/:id/join", controllers.JoinGame(s.Games))

		authentication.POST("/games/:id/leave", controllers.LeaveGame(s.Games))

		authentication.POST("/games/:id/subscribe", controllers.SubscribeGame(s.Games))

		authentication.POST("/games/:id/unsubscribe", controllers.UnsubscribeGame(s.Games))

		authentication.POST("/games/:id/invite", controllers.InviteToGame(s.Games))

		authentication.POST("/games/:id/messages", controllers.CreateMessage(s.Games))

		authentication.PATCH("/messages/:id", controllers.UpdateMessage(s.Games))

		authentication.DELETE("/messages/:id", controllers.DeleteMessage(s.Games))

		authentication.GET("/notifications", controllers.ListNotifications(s.Sync))

		authentication.DELETE("/notifications/:id", controllers.MarkNotificationSeen(s.Sync))
	}
}
