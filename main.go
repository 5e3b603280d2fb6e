package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect/auth"
	"devconnect/cache"
	"devconnect/config"
	"devconnect/database"
	"devconnect/github"
	"devconnect/handlers"
	"devconnect/middleware"
	"devconnect/repository"
	"devconnect/routes"
	"devconnect/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(middleware.NewLogger(os.Stdout, cfg.IsProduction()))
	slog.Info("starting DevConnect API", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	// ===== MONGODB =====
	client, err := database.Connect(ctx, cfg.MongoURI, 3)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			slog.Error("mongo disconnect failed", "error", err)
		}
	}()

	colls := database.NewCollections(client.Database(cfg.MongoDatabase))
	if err := database.EnsureIndexes(ctx, colls); err != nil {
		return err
	}

	// ===== REDIS (optional) =====
	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ===== SERVICES =====
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(colls.Users)
	profiles := repository.NewProfileRepository(colls.Profiles)
	posts := repository.NewPostRepository(colls.Posts)

	gh := github.NewClient(ctx, github.Options{
		BaseURL:  cfg.GithubAPIURL,
		Token:    cfg.GithubToken,
		Cache:    githubCache(rdb),
		CacheTTL: cfg.GithubCacheTTL,
	})

	h := handlers.New(
		service.NewAuthService(users, tokens),
		service.NewProfileService(profiles, users, posts),
		service.NewPostService(posts, users),
		gh,
		cfg.RequestTimeout,
	)

	// ===== ROUTER =====
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(routes.Options{
		Handler:        h,
		Verifier:       tokens,
		Limiter:        newLimiter(cfg, rdb),
		AllowedOrigins: cfg.Origins(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// newLimiter prefers the shared Redis window so every instance enforces one
// budget. A non-positive RATE_LIMIT disables limiting.
func newLimiter(cfg *config.Config, rdb *redis.Client) middleware.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	if rdb != nil {
		return middleware.NewRedisRateLimiter(rdb, cfg.RateLimit, cfg.RateWindow)
	}
	return middleware.NewIPRateLimiter(cfg.RateLimit, cfg.RateWindow)
}

// githubCache returns nil without Redis so the client skips the cache
// entirely instead of counting every lookup as a miss.
func githubCache(rdb *redis.Client) github.Cache {
	if rdb == nil {
		return nil
	}
	return cache.NewStore(rdb, "github:")
}
