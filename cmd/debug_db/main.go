package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_market_overview/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "fetch_log.db", "Path to the fetch log database")
	limit := flag.Int("limit", 20, "Number of records to show")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.ListFetches(context.Background(), *limit)
	if err != nil {
		fmt.Printf("Failed to list fetches: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d fetches:\n", len(records))
	for _, r := range records {
		if r.Error != "" {
			fmt.Printf("- #%d %s ❌ %s (%dms)\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Error, r.Duration)
			continue
		}
		fmt.Printf("- #%d %s ✅ %d tickers, %d passed filter (%dms)\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Total, r.Filtered, r.Duration)
	}
}
