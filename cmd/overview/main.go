package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitos/crypto_market_overview/internal/config"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/exchange"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/logger"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/storage"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"github.com/vitos/crypto_market_overview/internal/web"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("OVERVIEW_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Fetch Log (optional)
	var fetchLog domain.FetchLogRepository
	if cfg.Storage.FetchLogPath != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.FetchLogPath)
		if err != nil {
			log.Fatal("Failed to init sqlite", zap.Error(err))
		}
		defer store.Close()
		fetchLog = store
	}

	// 4. Init Exchange
	binance := exchange.NewBinanceAdapter(cfg.Exchange.RESTEndpoint, cfg.Exchange.WSEndpoint, cfg.ExchangeTimeout(), log)

	// 5. Init Services
	ranker := &usecase.Ranker{
		MinQuoteVolume: cfg.MinQuoteVolume(),
		QuoteSuffix:    cfg.Ranking.QuoteSuffix,
		ListLength:     cfg.Ranking.ListLength,
	}
	marketService := usecase.NewMarketService(binance, fetchLog, ranker, log)
	datafeedService := usecase.NewDatafeedService(binance, cfg.Chart.Timezone, log)

	chartDefaults := usecase.NewChartDefaults()
	chartDefaults.LibraryPath = cfg.Chart.LibraryPath
	chartDefaults.DisabledFeatures = cfg.Chart.DisabledFeatures
	chartDefaults.Interval = cfg.Chart.Interval
	chartDefaults.Theme = cfg.Chart.Theme
	chartDefaults.Timezone = cfg.Chart.Timezone
	chartDefaults.Debug = cfg.Chart.Debug

	// 6. Init Web Server
	if err := web.InitTemplates(cfg.Server.TemplatesDir); err != nil {
		log.Fatal("Failed to initialize templates", zap.Error(err))
	}
	server := web.NewServer(cfg.Server.Port, marketService, datafeedService, chartDefaults, cfg.Server.StaticDir, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 7. Start Server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 8. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("Server shutdown error", zap.Error(err))
	}
}
