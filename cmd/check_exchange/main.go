package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_market_overview/internal/config"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/exchange"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file")
	category := flag.String("category", "", "print only this category (hot, gainers, losers)")
	sortKey := flag.String("sort", "", "column sort: lastPrice, priceChangePercent, quoteVolume")
	desc := flag.Bool("desc", false, "sort descending")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing %s public ticker endpoint...\n", cfg.Exchange.Name)
	fmt.Printf("Endpoint: %s\n", cfg.Exchange.RESTEndpoint)

	adapter := exchange.NewBinanceAdapter(cfg.Exchange.RESTEndpoint, cfg.Exchange.WSEndpoint, cfg.ExchangeTimeout(), zap.NewNop())
	ranker := &usecase.Ranker{
		MinQuoteVolume: cfg.MinQuoteVolume(),
		QuoteSuffix:    cfg.Ranking.QuoteSuffix,
		ListLength:     cfg.Ranking.ListLength,
	}
	svc := usecase.NewMarketService(adapter, nil, ranker, zap.NewNop())

	// 2. One fetch, no retry
	state := svc.Load(context.Background())
	if state.Status() == usecase.StatusError {
		fmt.Printf("❌ %s\n", state.Err)
		os.Exit(1)
	}

	sortCfg := domain.SortConfig{Key: domain.SortKey(*sortKey), Direction: domain.SortAsc}
	if *desc {
		sortCfg.Direction = domain.SortDesc
	}

	categories := domain.Categories
	if *category != "" {
		categories = []domain.Category{domain.ParseCategory(*category)}
	}

	// 3. Print views
	for _, c := range categories {
		view := state.SelectCategory(c).WithSort(sortCfg)
		fmt.Printf("\n✅ %s (%d)\n", c.Title(), len(view.Rows()))
		if view.Status() == usecase.StatusEmpty {
			fmt.Println(usecase.MsgNoMarkets)
			continue
		}
		fmt.Printf("%-14s | %9s | %16s\n", "Symbol", "Change%", "Price")
		for _, t := range view.Rows() {
			fmt.Printf("%-14s | %9s | %16s\n", t.Symbol, usecase.FormatPercent(t.PriceChangePercent), usecase.FormatPrice(t.LastPrice))
		}
	}
}
