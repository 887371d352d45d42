package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/linentrack/linentrack/internal/app"
	"github.com/linentrack/linentrack/internal/auth"
	"github.com/linentrack/linentrack/internal/dashboard"
	"github.com/linentrack/linentrack/internal/linens"
	"github.com/linentrack/linentrack/internal/masterdata/damagereasons"
	"github.com/linentrack/linentrack/internal/masterdata/hospitals"
	"github.com/linentrack/linentrack/internal/masterdata/products"
	"github.com/linentrack/linentrack/internal/masterdata/wards"
	"github.com/linentrack/linentrack/internal/observability"
	"github.com/linentrack/linentrack/internal/platform/cache"
	"github.com/linentrack/linentrack/internal/platform/db"
	"github.com/linentrack/linentrack/internal/requisitions"
	"github.com/linentrack/linentrack/internal/shared"
	"github.com/linentrack/linentrack/internal/users"
	"github.com/linentrack/linentrack/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "linentrack_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	otpStore := auth.NewOTPStore(redisClient, cfg.OTPTTL)
	mailer := auth.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	authService := auth.NewService(auth.NewRepository(pool), otpStore, mailer, auditLogger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	requisitionService := requisitions.NewService(requisitions.NewRepository(pool))
	requisitionHandler := requisitions.NewHandler(logger, requisitionService)

	reasonService := damagereasons.NewService(damagereasons.NewRepository(pool))
	linenService := linens.NewService(linens.NewRepository(pool), auditLogger, reasonService)
	linenHandler := linens.NewHandler(logger, linenService)

	wardHandler := wards.NewHandler(logger, wards.NewService(wards.NewRepository(pool)))
	productHandler := products.NewHandler(logger, products.NewService(products.NewRepository(pool)))
	reasonHandler := damagereasons.NewHandler(logger, reasonService)
	hospitalHandler := hospitals.NewHandler(logger, hospitals.NewService(hospitals.NewRepository(pool)))
	userHandler := users.NewHandler(logger, users.NewService(users.NewRepository(pool)))

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboard.NewPGRepository(pool), dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		RequisitionHandler:  requisitionHandler,
		LinenHandler:        linenHandler,
		WardHandler:         wardHandler,
		ProductHandler:      productHandler,
		DamageReasonHandler: reasonHandler,
		HospitalHandler:     hospitalHandler,
		UserHandler:         userHandler,
		DashboardHandler:    dashboardHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
