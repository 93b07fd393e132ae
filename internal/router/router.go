package router

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/gateway"
	"github.com/mbeoliero/coursehub/internal/handler"
	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Notification *handler.NotificationHandler
}

// SetupRouter sets up all routes. wsServer may be nil when websockets are
// served only by the dedicated listener.
func SetupRouter(h *server.Hertz, cfg *config.Config, handlers *Handlers, auth middleware.Authenticator, wsServer *gateway.WsServer) {
	registerRoutes(h.Engine, cfg, handlers, auth, wsServer)
}

func registerRoutes(e *route.Engine, cfg *config.Config, handlers *Handlers, auth middleware.Authenticator, wsServer *gateway.WsServer) {
	// CORS middleware
	e.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	e.NoRoute(func(ctx context.Context, c *app.RequestContext) {
		response.ErrorWithCode(ctx, c, errcode.ErrRouteNotFound)
	})
	e.NoMethod(func(ctx context.Context, c *app.RequestContext) {
		response.ErrorWithCode(ctx, c, errcode.ErrMethodNotAllow)
	})

	// Health check
	e.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	requireAuth := middleware.Auth(auth)

	// Auth routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", handlers.Auth.SignUp)
		authGroup.POST("/login", handlers.Auth.Login)
		authGroup.POST("/refresh", handlers.Auth.Refresh)
		authGroup.POST("/logout", requireAuth, handlers.Auth.Logout)
	}

	// User routes (auth required)
	userGroup := v1.Group("/users", requireAuth)
	{
		userGroup.GET("/me", handlers.User.GetMe)
		userGroup.PATCH("/me", handlers.User.UpdateMe)
		userGroup.GET("/:userId", handlers.User.GetUser)
	}

	// Conversation routes (auth required)
	convGroup := v1.Group("/conversations", requireAuth)
	{
		convGroup.POST("", handlers.Conversation.CreateConversation)
		convGroup.GET("", handlers.Conversation.ListConversations)
		convGroup.GET("/:conversationId/messages", handlers.Conversation.GetMessages)
		convGroup.PATCH("/:conversationId/seen", handlers.Conversation.MarkSeen)
	}

	// Message routes (auth required)
	msgGroup := v1.Group("/messages", requireAuth)
	{
		msgGroup.POST("/direct", handlers.Message.SendDirectMessage)
	}

	// Notification routes (auth required, creation is admin only)
	notifGroup := v1.Group("/notifications", requireAuth)
	{
		notifGroup.GET("", handlers.Notification.List)
		notifGroup.PATCH("/read-all", handlers.Notification.MarkAllRead)
		notifGroup.PATCH("/:notificationId/read", handlers.Notification.MarkRead)
		notifGroup.DELETE("/:notificationId", handlers.Notification.Delete)

		admin := middleware.RequireRole(constant.RoleAdmin)
		notifGroup.POST("", admin, handlers.Notification.Create)
		notifGroup.POST("/broadcast", admin, handlers.Notification.Broadcast)
	}

	// WebSocket route using hertz-contrib/websocket
	if wsServer != nil {
		upgrader := wsServer.HertzUpgrader()
		e.GET("/ws", func(ctx context.Context, c *app.RequestContext) {
			wsServer.HandleHertzConnection(ctx, c, upgrader)
		})
	}
}
