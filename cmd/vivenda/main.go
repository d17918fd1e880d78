package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivenda-crm/vivenda-crm/internal/app"
	"github.com/vivenda-crm/vivenda-crm/internal/auth"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/clients"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/dashboard"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/estimates"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/preview"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/properties"
	"github.com/vivenda-crm/vivenda-crm/internal/observability"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/rbac"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
	"github.com/vivenda-crm/vivenda-crm/internal/users"
	"github.com/vivenda-crm/vivenda-crm/report"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "vivenda_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacMiddleware := rbac.NewMiddleware(logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(dbpool, clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	propertiesRepo := properties.NewRepository(dbpool)
	propertiesService := properties.NewService(propertiesRepo)
	propertiesHandler := properties.NewHandler(logger, propertiesService)

	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(dbpool, invoicesRepo, cfg.DocumentSeries)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	estimatesRepo := estimates.NewRepository(dbpool)
	estimatesService := estimates.NewService(dbpool, estimatesRepo, invoicesRepo, cfg.DocumentSeries)
	estimatesHandler := estimates.NewHandler(logger, estimatesService)

	previewHandler := preview.NewHandler()

	dashboardService := dashboard.NewService(dbpool)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(logger, reportClient, invoicesService, estimatesService, clientsService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterDeps{
		Middleware: app.MiddlewareConfig{
			Logger:         logger,
			Config:         cfg,
			SessionManager: sessionManager,
			CSRFManager:    csrfManager,
			Metrics:        metrics,
		},
		Metrics:    metrics,
		RBAC:       rbacMiddleware,
		Auth:       authHandler,
		Users:      usersHandler,
		Clients:    clientsHandler,
		Properties: propertiesHandler,
		Estimates:  estimatesHandler,
		Invoices:   invoicesHandler,
		Preview:    previewHandler,
		Dashboard:  dashboardHandler,
		Reports:    reportHandler,
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
