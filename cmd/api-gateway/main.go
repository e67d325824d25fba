package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/unisphere/unisphere-api/api/swagger"
	"github.com/unisphere/unisphere-api/internal/chat"
	"github.com/unisphere/unisphere-api/internal/handler"
	"github.com/unisphere/unisphere-api/internal/repository"
	"github.com/unisphere/unisphere-api/internal/router"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/cache"
	"github.com/unisphere/unisphere-api/pkg/completion"
	"github.com/unisphere/unisphere-api/pkg/config"
	"github.com/unisphere/unisphere-api/pkg/database"
	"github.com/unisphere/unisphere-api/pkg/jobs"
	"github.com/unisphere/unisphere-api/pkg/logger"
	"github.com/unisphere/unisphere-api/pkg/storage"
	"github.com/unisphere/unisphere-api/pkg/validation"
)

// @title UniSphere API
// @version 1.0.0
// @description University portal backend: schedules, events, clubs, lost & found, cafeteria, transport, chat, campus navigation and quizzes.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logr.Warn("redis disabled; caching and shared presence are off")
	}

	validation.SetupGin()
	validate := validation.New()

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare upload dir", zap.Error(err))
	}
	receipts, err := storage.NewLocalStorage(cfg.Receipts.Dir)
	if err != nil {
		logr.Fatal("failed to prepare receipt dir", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	eventRepo := repository.NewEventRepository(db)
	clubRepo := repository.NewClubRepository(db)
	lostFoundRepo := repository.NewLostFoundRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	busRepo := repository.NewBusRepository(db)
	buildingRepo := repository.NewBuildingRepository(db)
	chatRepo := repository.NewChatRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb, logr)
	presenceRepo := repository.NewPresenceRepository(rdb, cfg.Chat.PresenceKey)

	// Services
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, rdb != nil)

	authSvc := service.NewAuthService(
		userRepo,
		service.NewGoogleTokenVerifier(cfg.Google.ClientID, cfg.Google.TokenInfoURL, &http.Client{Timeout: 10 * time.Second}),
		validate,
		logr,
		service.AuthConfig{
			AccessTokenSecret:  cfg.JWT.Secret,
			AccessTokenExpiry:  cfg.JWT.Expiration,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
			Issuer:             "unisphere-api",
		},
	)
	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	clubSvc := service.NewClubService(clubRepo, validate, logr)
	menuSvc := service.NewMenuService(menuRepo, validate, logr)
	busSvc := service.NewBusService(busRepo, validate, logr)
	campusSvc := service.NewCampusService(buildingRepo, validate, logr, cfg.Campus.DetectionRadiusMeters)
	lostFoundSvc := service.NewLostFoundService(lostFoundRepo, uploads, cacheSvc, validate, logr, service.UploadPolicy{
		MaxBytes:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		PublicPrefix: "/uploads",
	})
	orderSvc := service.NewOrderService(service.OrderServiceParams{
		Repo:      orderRepo,
		Menu:      menuRepo,
		Receipts:  receipts,
		Signer:    signer,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.OrderServiceConfig{
			TaxRate:         cfg.Cafeteria.TaxRate,
			DownloadBaseURL: cfg.APIPrefix + "/receipts/download",
		},
	})
	chatSvc := service.NewChatService(chatRepo, userRepo, metricsSvc, validate, logr)
	quizSvc := service.NewQuizService(completion.NewClient(cfg.Completion), validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Repo:     dashboardRepo,
		Presence: presenceRepo,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		Logger:   logr,
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	exportSvc := service.NewExportService(orderRepo, lostFoundRepo, logr)

	// Receipt rendering runs off the request path.
	receiptQueue := jobs.NewQueue("receipts", orderSvc.ProcessReceipt, jobs.QueueConfig{
		Workers:    cfg.Receipts.Workers,
		MaxRetries: cfg.Receipts.Retries,
		RetryDelay: 2 * time.Second,
		OnFailure:  orderSvc.ReceiptFailed,
		Logger:     logr,
	})
	orderSvc.AttachQueue(receiptQueue)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	receiptQueue.Start(workerCtx)

	hub := chat.NewHub(chat.HubParams{
		Messenger:      chatSvc,
		Presence:       presenceRepo,
		Metrics:        metricsSvc,
		Logger:         logr,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	chatSvc.AttachNotifier(hub)
	// A restarted instance holds no sockets, so stale presence is cleared.
	hub.ResetPresence(workerCtx)

	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		User:      handler.NewUserHandler(userSvc),
		Class:     handler.NewClassHandler(classSvc),
		Faculty:   handler.NewFacultyHandler(facultySvc),
		Event:     handler.NewEventHandler(eventSvc),
		Club:      handler.NewClubHandler(clubSvc),
		LostFound: handler.NewLostFoundHandler(lostFoundSvc, cfg.Uploads.MaxFileSizeBytes),
		Menu:      handler.NewMenuHandler(menuSvc),
		Order:     handler.NewOrderHandler(orderSvc),
		Bus:       handler.NewBusHandler(busSvc),
		Chat:      handler.NewChatHandler(chatSvc, hub, logr),
		Campus:    handler.NewCampusHandler(campusSvc),
		Quiz:      handler.NewQuizHandler(quizSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Export:    handler.NewExportHandler(exportSvc),
		Health:    handler.NewHealthHandler(metricsSvc, readinessChecks(db, rdb)),
	}

	engine := router.New(cfg, handlers, router.Deps{
		Tokens:  authSvc,
		Audit:   userRepo,
		Metrics: metricsSvc,
		Logger:  logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}

	workerCancel()
	receiptQueue.Stop()
	logr.Info("shutdown complete")
}

func readinessChecks(db *sqlx.DB, rdb *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error { return database.Check(ctx, db) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return cache.Check(ctx, rdb) }
	}
	return checks
}
