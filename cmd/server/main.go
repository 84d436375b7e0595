package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-tracker/internal/tracker/config"
	delivery "portfolio-tracker/internal/tracker/delivery/http"
	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/internal/tracker/service"
	"portfolio-tracker/pkg/logger"
	"portfolio-tracker/pkg/postgres"
	"portfolio-tracker/pkg/redis"
	"portfolio-tracker/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the portfolio tracker web service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Portfolio Tracker", logger.Field("name", cfg.App.Name))

	// Initialize the position store
	var positionRepo repository.PositionRepository
	switch cfg.Storage.Driver {
	case "postgres":
		postgresCfg := postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		}
		db, err := postgres.NewDB(postgresCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
		positionRepo = repository.NewPostgresPositionRepository(db.DB)
	case "file":
		positionRepo, err = repository.NewFilePositionRepository(cfg.Storage.File, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize position store", logger.ErrorField(err))
		}
	default:
		appLogger.Fatal("Unknown storage driver", logger.StringField("driver", cfg.Storage.Driver))
	}

	// Initialize the market data provider
	var priceRepo repository.PriceRepository
	switch cfg.Provider.Driver {
	case "alpaca":
		priceRepo = repository.NewAlpacaRepository(appLogger)
	case "yahoo":
		priceRepo = repository.NewYahooFinanceRepository(cfg, appLogger)
	default:
		appLogger.Fatal("Unknown provider driver", logger.StringField("driver", cfg.Provider.Driver))
	}

	// Initialize the price cache
	var priceCache service.PriceCache
	switch cfg.PriceCache.Backend {
	case "redis":
		redisCfg := redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		redisClient, err := redis.NewClient(redisCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		priceCache = service.NewRedisPriceCache(priceRepo, appLogger, redisClient, cfg.PriceCache.TTL)
	case "memory":
		priceCache = service.NewMemoryPriceCache(priceRepo, appLogger, cfg.PriceCache.TTL)
	default:
		appLogger.Fatal("Unknown price cache backend", logger.StringField("backend", cfg.PriceCache.Backend))
	}

	// Initialize services
	portfolioSvc := service.NewPortfolioService(positionRepo, priceCache, appLogger)

	// Start the background price refresher
	if cfg.Refresher.Enabled {
		var notifier telegram.Notifier
		if cfg.Refresher.NotifySummary && cfg.Telegram.BotToken != "" {
			notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
			if err != nil {
				appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
			}
		}
		refresherSvc := service.NewRefresherService(cfg, portfolioSvc, notifier, appLogger)
		if err := refresherSvc.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start price refresher", logger.ErrorField(err))
		}
		defer refresherSvc.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"name":    cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	// Initialize handlers and routes
	portfolioHandler := delivery.NewPortfolioHandler(portfolioSvc, appLogger)
	api := e.Group("/api")
	portfolioHandler.RegisterRoutes(api)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "portfolio-server"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing portfolio-server CLI: %s\n", err)
		os.Exit(1)
	}
}
