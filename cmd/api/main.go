package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/quicknotes/quicknotes-go/internal/config"
	"github.com/quicknotes/quicknotes-go/internal/handler"
	"github.com/quicknotes/quicknotes-go/internal/middleware"
	"github.com/quicknotes/quicknotes-go/internal/repository"
	"github.com/quicknotes/quicknotes-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := repository.RunMigrations(ctx, db); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	noteService := service.NewNoteService(noteRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.UseCookies, cfg.RefreshTokenTTL)
	noteHandler := handler.NewNoteHandler(noteService)

	authLimiter, apiLimiter := newLimiters(cfg)

	router := handler.NewRouter(authHandler, noteHandler, handler.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		AuthLimiter: authLimiter,
		APILimiter:  apiLimiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// newLimiters builds the rate-limit backends: Redis counters when
// REDIS_ADDR is configured, in-process token buckets otherwise.
func newLimiters(cfg config.Config) (middleware.Limiter, middleware.Limiter) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter(cfg.AuthRateLimit, cfg.RateLimitWindow),
			middleware.NewMemoryLimiter(cfg.APIRateLimit, cfg.RateLimitWindow)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, falling back to in-memory rate limiting", "error", err)
		client.Close()
		return middleware.NewMemoryLimiter(cfg.AuthRateLimit, cfg.RateLimitWindow),
			middleware.NewMemoryLimiter(cfg.APIRateLimit, cfg.RateLimitWindow)
	}

	slog.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
	return middleware.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.RateLimitWindow),
		middleware.NewRedisLimiter(client, cfg.APIRateLimit, cfg.RateLimitWindow)
}
