package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/internal/handler"
	"github.com/mbeoliero/parley/internal/middleware"
	"github.com/mbeoliero/parley/pkg/jwt"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Reaction     *handler.ReactionHandler
	Typing       *handler.TypingHandler
}

// SetupRouter sets up all routes. Queries run with optional authentication and answer anonymous
// callers with empty results; mutations require a valid token. tokenStore may be nil.
func SetupRouter(h *server.Hertz, handlers *Handlers, tokenStore *jwt.TokenStore) {
	cfg := config.GlobalConfig

	h.Use(middleware.RequestId(), middleware.Metrics(), middleware.CORS(cfg.Server.AllowedOrigins))

	// Health check
	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})
	h.GET("/metrics", adaptor.HertzHandler(promhttp.Handler()))

	optional := middleware.Authenticate(tokenStore)
	required := middleware.RequireAuth(tokenStore)

	authGroup := h.Group("/auth")
	{
		authGroup.POST("/logout", required, handlers.Auth.Logout)
	}

	userGroup := h.Group("/user")
	{
		userGroup.POST("/sync", required, handlers.User.Sync)
		userGroup.GET("/me", optional, handlers.User.GetMe)
		userGroup.GET("/list", optional, handlers.User.List)
		userGroup.GET("/search", optional, handlers.User.Search)
		userGroup.POST("/online", required, handlers.User.SetOnline)
	}

	convGroup := h.Group("/conversation")
	{
		convGroup.POST("/create", required, handlers.Conversation.Create)
		convGroup.POST("/direct", required, handlers.Conversation.CreateDirect)
		convGroup.POST("/group", required, handlers.Conversation.CreateGroup)
		convGroup.GET("/list", optional, handlers.Conversation.List)
		convGroup.GET("/info", optional, handlers.Conversation.Get)
		convGroup.GET("/members", optional, handlers.Conversation.ListMembers)
		convGroup.POST("/mark_read", required, handlers.Conversation.MarkRead)
		convGroup.POST("/delete", required, handlers.Conversation.Delete)
		convGroup.POST("/add_member", required, handlers.Conversation.AddMember)
	}

	msgGroup := h.Group("/msg")
	{
		msgGroup.POST("/send", required, handlers.Message.Send)
		msgGroup.GET("/list", optional, handlers.Message.List)
		msgGroup.POST("/edit", required, handlers.Message.Edit)
		msgGroup.POST("/delete", required, handlers.Message.Delete)
		msgGroup.POST("/pin", required, handlers.Message.Pin)
		msgGroup.GET("/pinned", optional, handlers.Message.ListPinned)
	}

	reactionGroup := h.Group("/reaction")
	{
		reactionGroup.POST("/toggle", required, handlers.Reaction.Toggle)
	}

	typingGroup := h.Group("/typing")
	{
		typingGroup.POST("/update", required, handlers.Typing.Update)
		typingGroup.GET("/list", optional, handlers.Typing.List)
	}
}
