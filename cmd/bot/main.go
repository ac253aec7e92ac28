package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/handler"
	"github.com/noah-isme/linguasaurus-bot/internal/middleware"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
	"github.com/noah-isme/linguasaurus-bot/internal/repository"
	"github.com/noah-isme/linguasaurus-bot/internal/service"
	"github.com/noah-isme/linguasaurus-bot/pkg/cache"
	"github.com/noah-isme/linguasaurus-bot/pkg/config"
	"github.com/noah-isme/linguasaurus-bot/pkg/database"
	"github.com/noah-isme/linguasaurus-bot/pkg/logger"
	"github.com/noah-isme/linguasaurus-bot/pkg/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("bot failed", "error", err)
	}
	logr.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	catalog, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Cache, cfg.Redis)
	if err != nil {
		// the listing cache is optional; keep serving from the database
		logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	resources := service.NewResourceService(repository.NewResourceRepository(db), cacheSvc, metrics, logr)
	users := service.NewUserService(repository.NewUserRepository(db), cfg.AdminIDs, metrics, logr)
	if revoked, err := users.SyncAdmins(ctx); err != nil {
		logr.Warn("admin flag sync failed", zap.Error(err))
	} else if len(revoked) > 0 {
		logr.Info("revoked stale admin flags", zap.Int64s("user_ids", revoked))
	}

	client, err := telegram.New(cfg.Bot, logr)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	broadcasts := service.NewBroadcastService(users, client, service.BroadcastConfig{
		Workers:    cfg.Broadcast.Workers,
		MaxRetries: cfg.Broadcast.MaxRetries,
		RetryDelay: cfg.Broadcast.RetryDelay,
	}, metrics, logr)
	broadcasts.Start(ctx)
	defer broadcasts.Stop()

	bot := handler.NewBotHandler(handler.BotDeps{
		Catalog:     catalog,
		Resources:   resources,
		Users:       users,
		Sessions:    service.NewSessionStore(cfg.Session.MaxEntries, cfg.Session.TTL),
		Messenger:   client,
		Broadcaster: broadcasts,
		Inventory:   service.NewInventoryService(resources, logr),
		Stats:       metrics,
		Validator:   validator.New(),
		Logger:      logr,
	})

	pipeline := middleware.Chain(bot.Handle,
		middleware.Recover(logr),
		middleware.RequestID(),
		middleware.Logging(logr),
		middleware.Metrics(metrics),
		middleware.TrackUser(users, logr),
	)

	ops := handler.NewOpsHandler(metrics, map[string]handler.Pinger{
		"database": handler.PingFunc(db.PingContext),
		"redis":    cacheRepo,
		"telegram": client,
	}, logr)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.OpsPort),
		Handler:           ops.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("ops server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("ops server failed", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("bot polling", "username", client.Username(), "workers", cfg.Bot.Workers)
	handler.NewDispatcher(cfg.Bot.Workers, pipeline, logr).Run(ctx, client.Updates(ctx))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("ops server shutdown", zap.Error(err))
	}
	return nil
}

func loadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return models.DefaultCatalog(), nil
	}
	file, err := config.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return models.NewCatalog(file.Semesters, file.ResourceTypes)
}
