// Command dailydeck-server starts the dailydeck HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/dailydeck/internal/cache"
	"github.com/and161185/dailydeck/internal/config"
	pkgcrypto "github.com/and161185/dailydeck/internal/crypto"
	"github.com/and161185/dailydeck/internal/limiter"
	"github.com/and161185/dailydeck/internal/migrate"
	"github.com/and161185/dailydeck/internal/repository/postgres"
	httpserver "github.com/and161185/dailydeck/internal/server/http"
	"github.com/and161185/dailydeck/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	addr := flag.String("addr", "", "listen address (overrides SERVER_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DB.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	drawRepo := postgres.NewDrawRepo(db)
	journalRepo := postgres.NewJournalRepo(db)

	lim := limiter.NewPG(pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)

	// Optional history cache
	var histCache *cache.HistoryCache
	if cfg.Cache.RedisAddr != "" {
		histCache, err = cache.NewHistoryCache(cfg.Cache.RedisAddr, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = histCache.Close() }()
	}

	journalCipher, err := pkgcrypto.NewJournalCipher([]byte(cfg.Journal.Secret))
	if err != nil {
		logger.Fatal("journal cipher", zap.Error(err))
	}

	// Services
	authSvc := service.NewAuthService(userRepo, []byte(cfg.Auth.JWTKey), cfg.Auth.AccessTTL, lim)
	drawSvc := service.NewDrawService(drawRepo, histCache)
	journalSvc := service.NewJournalService(journalRepo, drawRepo, journalCipher)

	app := httpserver.New(authSvc, drawSvc, journalSvc, []byte(cfg.Auth.JWTKey), logger)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: app.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
