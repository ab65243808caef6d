package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/config"
	"github.com/mbeoliero/parley/internal/handler"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/internal/router"
	"github.com/mbeoliero/parley/internal/service"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/mbeoliero/parley/pkg/idgen"
	"github.com/mbeoliero/parley/pkg/jwt"
)

func main() {
	ctx := context.TODO()
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	log.CtxInfo(ctx, "config loaded: mode=%s, driver=%s", cfg.Server.Mode, cfg.Database.Driver)

	// Initialize Redis key prefix
	constant.InitRedisKeyPrefix(cfg.Redis.KeyPrefix)
	log.CtxInfo(ctx, "redis key prefix: %s", constant.GetRedisKeyPrefix())

	if err := idgen.Init(cfg.IdGen.Kind, cfg.IdGen.MachineId); err != nil {
		log.CtxError(ctx, "failed to initialize id generator: %v", err)
		panic(err)
	}

	// Initialize repositories
	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	// Check database connection
	if err := repos.CheckConnection(ctx); err != nil {
		log.CtxError(ctx, "store connection check failed: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "database and redis connections established")

	var tokenStore *jwt.TokenStore
	if cfg.Auth.Revocation {
		tokenStore = jwt.NewTokenStore(repos.Redis)
	}

	// Initialize services
	identity := service.NewIdentityResolver(repos)
	userService := service.NewUserService(repos, identity)
	convService := service.NewConversationService(repos, identity)
	msgService := service.NewMessageService(repos, identity)
	reactionService := service.NewReactionService(repos, identity)
	typingService := service.NewTypingService(repos, identity, service.WithTypingWindow(cfg.Typing.FreshnessWindow))

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(tokenStore, userService),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(convService),
		Message:      handler.NewMessageHandler(msgService),
		Reaction:     handler.NewReactionHandler(reactionService),
		Typing:       handler.NewTypingHandler(typingService),
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
	)

	// Setup routes
	router.SetupRouter(h, handlers, tokenStore)

	log.CtxInfo(ctx, "server starting on port %d", cfg.Server.HTTPPort)

	// Start server in goroutine
	go func() {
		h.Spin()
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.CtxInfo(ctx, "shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.CtxError(ctx, "server shutdown error: %v", err)
	}

	log.CtxInfo(ctx, "server stopped")
}
