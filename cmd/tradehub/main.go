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

	"github.com/gin-gonic/gin"

	"github.com/valutatrade/tradehub/internal/adapters/sources"
	"github.com/valutatrade/tradehub/internal/adapters/storage/jsonfile"
	"github.com/valutatrade/tradehub/internal/core/ports"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/core/services"
	"github.com/valutatrade/tradehub/internal/handlers"
	"github.com/valutatrade/tradehub/internal/middleware"
	"github.com/valutatrade/tradehub/internal/platform/config"
	"github.com/valutatrade/tradehub/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// JSON file storage
	rateRepo := jsonfile.NewRateRepository(cfg.DataPath)
	portfolioRepo := jsonfile.NewPortfolioRepository(cfg.DataPath)
	userRepo := jsonfile.NewUserRepository(cfg.DataPath)

	// Rate sources
	rateSources := []ports.RateSource{
		sources.NewCoinGeckoSource(cfg.CoinGeckoURL, cfg.RequestTimeout),
		sources.NewExchangeRateAPISource(cfg.ExchangeRateAPIURL, cfg.ExchangeRateAPIKey, cfg.RequestTimeout),
	}

	// Core services
	currencyService := services.NewCurrencyService()
	rateService := services.NewRateService(rateSources, rateRepo, rateRepo, currencyService, cfg.RatesTTL, logger)
	ledgerService := services.NewLedgerService(portfolioRepo, rateService, currencyService)
	userService := services.NewUserService(userRepo, portfolioRepo)

	container := &portssvc.ServiceContainer{
		Currency: currencyService,
		Rates:    rateService,
		Ledger:   ledgerService,
		User:     userService,
	}

	// Background refresh keeps the cache warm between requests.
	refreshScheduler := scheduler.NewRefreshScheduler(rateService, cfg.RefreshInterval, cfg.RequestTimeout*2, logger)
	if err := refreshScheduler.Start(); err != nil {
		logger.Error("Failed to start refresh scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go refreshScheduler.RunNow()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := refreshScheduler.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Shutdown complete")
}
