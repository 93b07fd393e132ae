package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/gateway"
	"github.com/mbeoliero/coursehub/internal/handler"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/internal/router"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/response"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	log.CtxInfo(ctx, "config loaded: mode=%s", cfg.Server.Mode)
	response.SetDebug(!cfg.Server.IsRelease())

	// Initialize Redis key prefix
	constant.InitRedisKeyPrefix(cfg.Redis.KeyPrefix)
	log.CtxInfo(ctx, "redis key prefix: %s", constant.GetRedisKeyPrefix())

	// Initialize repositories
	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	// Check database connection
	if err := repos.CheckConnection(ctx); err != nil {
		log.CtxError(ctx, "database connection check failed: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "database connection established")

	// Initialize services
	authService := service.NewAuthService(repos, cfg)
	userService := service.NewUserService(repos)
	convService := service.NewConversationService(repos)
	msgService := service.NewMessageService(repos)
	notifService := service.NewNotificationService(repos)

	// Initialize WebSocket server
	presence, err := newPresence(cfg, repos)
	if err != nil {
		log.CtxError(ctx, "failed to initialize presence: %v", err)
		panic(err)
	}
	wsServer := gateway.NewWsServer(cfg, authService, convService, presence)

	// Services publish real-time events through the gateway
	convService.SetPusher(wsServer)
	msgService.SetPusher(wsServer)
	notifService.SetPusher(wsServer)

	wsServer.Run(ctx)
	log.CtxInfo(ctx, "websocket server started")

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.Server.CookieSecure),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(convService, msgService),
		Message:      handler.NewMessageHandler(msgService),
		Notification: handler.NewNotificationHandler(notifService),
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
		server.WithExitWaitTime(5*time.Second),
	)

	// The hertz listener serves /ws itself unless a dedicated port is configured
	var wsListener *http.Server
	if cfg.Server.WSPort != cfg.Server.HTTPPort {
		router.SetupRouter(h, cfg, handlers, authService, nil)

		mux := http.NewServeMux()
		mux.Handle("/ws", wsServer)
		wsListener = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.WSPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.CtxInfo(ctx, "websocket listener starting on port %d", cfg.Server.WSPort)
			if err := wsListener.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.CtxError(ctx, "websocket listener error: %v", err)
			}
		}()
	} else {
		router.SetupRouter(h, cfg, handlers, authService, wsServer)
	}

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Graceful shutdown
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.CtxError(ctx, "server shutdown error: %v", err)
	}
	if wsListener != nil {
		if err := wsListener.Shutdown(shutdownCtx); err != nil {
			log.CtxError(ctx, "websocket listener shutdown error: %v", err)
		}
	}
	cancel()

	log.CtxInfo(ctx, "server stopped")
}

// newPresence picks the presence backend; redis requires redis.enabled
func newPresence(cfg *config.Config, repos *repository.Repositories) (gateway.Presence, error) {
	switch cfg.Presence.Backend {
	case config.PresenceMemory:
		return gateway.NewMemoryPresence(), nil
	case config.PresenceRedis:
		if repos.Redis == nil {
			return nil, errors.New("presence backend redis requires redis.enabled")
		}
		return gateway.NewRedisPresence(repos.Redis), nil
	default:
		return nil, fmt.Errorf("unknown presence backend %q", cfg.Presence.Backend)
	}
}
