package domain

import (
	"context"
	"time"
)

// TickerSource provides the 24h ticker snapshot.
type TickerSource interface {
	Get24hrTickers(ctx context.Context) ([]Ticker, error)
}

// MarketDataSource is what the chart datafeed needs from an exchange.
type MarketDataSource interface {
	GetKlines(ctx context.Context, symbol, interval string, start, end time.Time, limit int) ([]Candle, error)
	GetInstruments(ctx context.Context) ([]Instrument, error)
	SubscribeKlines(ctx context.Context, symbol, interval string, callback func(Candle)) error
}

type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// FetchLogRepository records the outcome of snapshot fetches.
type FetchLogRepository interface {
	SaveFetch(ctx context.Context, rec *FetchRecord) error
	ListFetches(ctx context.Context, limit int) ([]*FetchRecord, error)
}
