// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-assistant/internal/auth"
	"github.com/iyunix/go-assistant/internal/config"
	"github.com/iyunix/go-assistant/internal/database"
	"github.com/iyunix/go-assistant/internal/handlers"
	"github.com/iyunix/go-assistant/internal/ratelimit"
	chatrepo "github.com/iyunix/go-assistant/internal/repository/chat"
	"github.com/iyunix/go-assistant/internal/repository/user"
	"github.com/iyunix/go-assistant/internal/render"
	"github.com/iyunix/go-assistant/internal/services"
	"github.com/iyunix/go-assistant/internal/services/ai"
	"github.com/iyunix/go-assistant/internal/services/chat"
	"github.com/iyunix/go-assistant/internal/services/user_services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	services.InitLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)

	// --- Services ---
	aiConfig := cfg.Completion()
	provider, err := ai.NewProvider(aiConfig)
	if err != nil {
		if cfg.IsProduction() {
			return err
		}
		slog.Warn("completion backend not configured; every reply will fail", "error", err)
		provider = ai.UnavailableProvider{Reason: err.Error()}
	}
	aiService := ai.NewService(provider, aiConfig, services.NewLogger("ai"))

	chatConfig := chat.DefaultConfig()
	chatConfig.FailurePolicy = cfg.CompletionFailurePolicy
	chatStore := chat.NewStore(chatRepo, chatConfig.TitleLength, services.NewLogger("chat_store"))
	chatService, err := chat.NewService(chatStore, aiService, chatConfig, services.NewLogger("chat"))
	if err != nil {
		return err
	}

	limiterConfig := ratelimit.DefaultAuthConfig()
	limiterConfig.MaxAttempts = cfg.AuthRateLimit
	limiterConfig.WindowSize = cfg.AuthRateWindow

	var (
		revoker     auth.TokenRevoker
		authLimiter ratelimit.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}
		revoker = auth.NewRedisTokenRevoker(rdb)
		authLimiter = ratelimit.NewRedisRateLimiter(rdb, "assistant:ratelimit", limiterConfig)
		slog.Info("using redis for sessions and rate limits", "addr", cfg.RedisAddr)
	} else {
		revoker = auth.NewMemoryTokenRevoker()
		memLimiter := ratelimit.NewMemoryRateLimiter(limiterConfig)
		defer memLimiter.Close()
		authLimiter = memLimiter
	}

	userService := user_services.NewUserService(userRepo, cfg.JWTSecretKey, cfg.JWTTTL, revoker, services.NewLogger("user"))

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Router{
		Chat:        handlers.NewChatHandler(chatService, render.NewMarkdown()),
		Auth:        handlers.NewAuthHandler(userService, cfg.JWTTTL, cfg.IsProduction()),
		Validator:   userService,
		AuthLimiter: authLimiter,
		Ping:        sqlDB.PingContext,
	})

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("🚀 server starting",
			"addr", srv.Addr,
			"env", cfg.Environment,
			"db", cfg.DBDriver,
			"ai_provider", provider.Name(),
			"failure_policy", cfg.CompletionFailurePolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("🛑 shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("✅ server stopped gracefully")
	return nil
}
