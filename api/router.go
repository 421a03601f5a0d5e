package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chatapp/auth"
	"chatapp/realtime"
)

// NewRouter wires the REST surface and the realtime upgrade endpoint.
// Register and login are public; every other API route requires a valid
// bearer token. The realtime endpoint runs its own gate, which also decides
// whether anonymous connections are allowed.
func NewRouter(handlers *Handlers, gateway *realtime.Gateway,
	authenticator *auth.Authenticator, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.POST("/api/auth/register", handlers.Register)
	router.POST("/api/auth/login", handlers.Login)

	chats := router.Group("/api/chats", auth.Middleware(authenticator))
	{
		chats.POST("/direct", handlers.CreateDirectChat)
		chats.POST("/group", handlers.CreateGroupChat)
		chats.POST("/:chatId/participants/:userId", handlers.AddMember)
		chats.DELETE("/:chatId/participants/:userId", handlers.RemoveMember)
		chats.GET("/:chatId", handlers.GetChat)
		chats.GET("/user/:userId", handlers.ListUserChats)
		chats.GET("/:chatId/messages", handlers.GetHistory)
	}

	router.GET("/ws", gateway.Handle)

	return router
}
