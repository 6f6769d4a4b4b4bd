// @title MailMuse Backend API
// @version 1.0
// @description MailMuse backend API for AI-assisted email marketing sequences
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "MAILMUSE_BACK-END/docs" // This is required for swagger
	"MAILMUSE_BACK-END/internal/ai"
	"MAILMUSE_BACK-END/internal/billing"
	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/handlers"
	"MAILMUSE_BACK-END/internal/logging"
	"MAILMUSE_BACK-END/internal/middleware"
	"MAILMUSE_BACK-END/internal/repository"
	"MAILMUSE_BACK-END/internal/routes"
	"MAILMUSE_BACK-END/internal/scrape"
	"MAILMUSE_BACK-END/internal/service"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

func main() {
	logger := logging.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// pgxpool + simple protocol (required when connecting through PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		logger.Fatal("failed to parse DSN", zap.Error(err))
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "mailmuse-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000" // 30s
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}
	}

	// Redis-backed usage counters
	redisStore := usage.NewRedisStore(cfg.Redis)
	limiter := usage.NewLimiter(redisStore)

	// AI client; a missing shared key still allows personal-key calls
	aiClient, err := ai.NewClient(context.Background(), cfg.AI)
	if err != nil {
		logger.Fatal("failed to create AI client", zap.Error(err))
	}

	scraper := scrape.NewScraper(15 * time.Second)
	billingClient := billing.NewClient(cfg.Billing)
	emailService := utils.NewEmailService(&cfg.Email)

	// Repositories and services
	workspaceRepo := &repository.WorkspaceRepository{DB: pool}
	campaignRepo := &repository.CampaignRepository{DB: pool}
	workspaceService := &service.WorkspaceService{WorkspaceRepo: workspaceRepo, CampaignRepo: campaignRepo}
	campaignService := &service.CampaignService{CampaignRepo: campaignRepo, AI: aiClient}

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(pool, &cfg.JWT),
		GoogleAuth: handlers.NewGoogleAuthHandler(pool, cfg),
		Password:   handlers.NewForgotPasswordHandler(pool, emailService, logger),
		Health:     handlers.NewHealthHandler(pool, redisStore),
		Context:    handlers.NewContextHandler(pool, aiClient, scraper, limiter, workspaceService, cfg, logger),
		Campaign:   handlers.NewCampaignHandler(pool, campaignService, workspaceService, limiter, cfg, logger),
		Workspace:  handlers.NewWorkspaceHandler(workspaceService),
		Export:     handlers.NewExportHandler(workspaceService, campaignService),
		Usage:      handlers.NewUsageHandler(pool, limiter, cfg),
		APIKey:     handlers.NewAPIKeyHandler(pool),
		Billing:    handlers.NewBillingHandler(pool, billingClient, cfg, logger),
	}
	routes.SetupRoutes(h, cfg)

	// CORS + request logging around the default mux
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	handler := c.Handler(middleware.RequestLogger(http.DefaultServeMux, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Wait for SIGINT/SIGTERM and shut down gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
