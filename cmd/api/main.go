package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/config"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/database"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/handler"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/integrations/cbr"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/middleware"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/repository"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/service"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/utils/email"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.Open(cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	cbrClient := cbr.NewCBRClient(cfg, logger)
	mailer := email.NewSender(cfg, logger)
	svc, err := service.NewService(repo, cbrClient, mailer, logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	h := handler.NewHandler(svc, logger)

	// Keep the suggested COK warm
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CBRRefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := cbrClient.Refresh(ctx); err != nil {
			logger.Warnf("Failed to refresh key rate: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("Invalid CBR_REFRESH_SPEC %q: %v", cfg.CBRRefreshSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := handler.NewRouter(h,
		middleware.AuthMiddleware(cfg, logger),
		middleware.RateLimit(cfg.CalcRateLimit, logger),
	)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
