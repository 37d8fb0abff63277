package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"go.uber.org/zap"
)

const (
	DatafeedExchange  = "BINANCE"
	historyLimit      = 1000
	defaultPriceScale = 100
)

var (
	ErrUnknownResolution = errors.New("unknown resolution")
	ErrSymbolNotFound    = errors.New("symbol not found")
)

// resolution -> exchange kline interval
var resolutions = map[string]string{
	"1":   "1m",
	"5":   "5m",
	"15":  "15m",
	"30":  "30m",
	"60":  "1h",
	"240": "4h",
	"D":   "1d",
	"1D":  "1d",
	"W":   "1w",
	"1W":  "1w",
}

var SupportedResolutions = []string{"1", "5", "15", "30", "60", "240", "1D", "1W"}

func KlineInterval(resolution string) (string, error) {
	if iv, ok := resolutions[resolution]; ok {
		return iv, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResolution, resolution)
}

type DatafeedConfig struct {
	SupportedResolutions   []string       `json:"supported_resolutions"`
	SupportsSearch         bool           `json:"supports_search"`
	SupportsGroupRequest   bool           `json:"supports_group_request"`
	SupportsMarks          bool           `json:"supports_marks"`
	SupportsTimescaleMarks bool           `json:"supports_timescale_marks"`
	SupportsTime           bool           `json:"supports_time"`
	Exchanges              []ExchangeDesc `json:"exchanges"`
	SymbolsTypes           []SymbolType   `json:"symbols_types"`
}

type ExchangeDesc struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
}

type SymbolType struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SymbolInfo struct {
	Name                 string   `json:"name"`
	Ticker               string   `json:"ticker"`
	Description          string   `json:"description"`
	Type                 string   `json:"type"`
	Session              string   `json:"session"`
	Exchange             string   `json:"exchange"`
	ListedExchange       string   `json:"listed_exchange"`
	Timezone             string   `json:"timezone"`
	MinMov               int      `json:"minmov"`
	PriceScale           int64    `json:"pricescale"`
	HasIntraday          bool     `json:"has_intraday"`
	HasWeeklyAndMonthly  bool     `json:"has_weekly_and_monthly"`
	SupportedResolutions []string `json:"supported_resolutions"`
	VolumePrecision      int      `json:"volume_precision"`
	DataStatus           string   `json:"data_status"`
}

type SearchResult struct {
	Symbol      string `json:"symbol"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Exchange    string `json:"exchange"`
	Ticker      string `json:"ticker"`
	Type        string `json:"type"`
}

// History is a bar series in the column layout the widget's UDF datafeed reads.
type History struct {
	Status string    `json:"s"`
	ErrMsg string    `json:"errmsg,omitempty"`
	Time   []int64   `json:"t,omitempty"`
	Open   []float64 `json:"o,omitempty"`
	High   []float64 `json:"h,omitempty"`
	Low    []float64 `json:"l,omitempty"`
	Close  []float64 `json:"c,omitempty"`
	Volume []float64 `json:"v,omitempty"`
}

// DatafeedService answers the chart widget's data requests.
type DatafeedService struct {
	source   domain.MarketDataSource
	timezone string
	logger   *zap.Logger

	mu          sync.Mutex
	instruments map[string]domain.Instrument
}

func NewDatafeedService(source domain.MarketDataSource, timezone string, logger *zap.Logger) *DatafeedService {
	if timezone == "" {
		timezone = defaultTimezone
	}
	return &DatafeedService{
		source:   source,
		timezone: timezone,
		logger:   logger,
	}
}

func (s *DatafeedService) Config() DatafeedConfig {
	return DatafeedConfig{
		SupportedResolutions: SupportedResolutions,
		SupportsSearch:       true,
		SupportsTime:         true,
		Exchanges: []ExchangeDesc{
			{Value: DatafeedExchange, Name: "Binance", Desc: "Binance"},
		},
		SymbolsTypes: []SymbolType{{Name: "crypto", Value: "crypto"}},
	}
}

func (s *DatafeedService) loadInstruments(ctx context.Context) (map[string]domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instruments != nil {
		return s.instruments, nil
	}

	list, err := s.source.GetInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instruments: %w", err)
	}
	m := make(map[string]domain.Instrument, len(list))
	for _, in := range list {
		m[in.Symbol] = in
	}
	s.instruments = m
	s.logger.Info("Instruments loaded", zap.Int("count", len(m)))
	return m, nil
}

// ResolveSymbol accepts plain or exchange-tagged names.
func (s *DatafeedService) ResolveSymbol(ctx context.Context, name string) (*SymbolInfo, error) {
	ext := splitTagged(strings.ToUpper(strings.TrimSpace(name)))
	if ext.Kind == ExtractUnrecognized {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
	}

	instruments, err := s.loadInstruments(ctx)
	if err != nil {
		return nil, err
	}
	in, ok := instruments[ext.Symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
	}

	return &SymbolInfo{
		Name:                 in.Symbol,
		Ticker:               in.Symbol,
		Description:          in.BaseAsset + " / " + in.QuoteAsset,
		Type:                 "crypto",
		Session:              "24x7",
		Exchange:             DatafeedExchange,
		ListedExchange:       DatafeedExchange,
		Timezone:             s.timezone,
		MinMov:               1,
		PriceScale:           PriceScale(in.TickSize),
		HasIntraday:          true,
		HasWeeklyAndMonthly:  true,
		SupportedResolutions: SupportedResolutions,
		VolumePrecision:      2,
		DataStatus:           "streaming",
	}, nil
}

// SearchSymbols matches USDT pairs by prefix first, then by substring.
func (s *DatafeedService) SearchSymbols(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	instruments, err := s.loadInstruments(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToUpper(strings.TrimSpace(query))

	var prefix, contains []string
	for sym := range instruments {
		if !strings.HasSuffix(sym, DefaultQuoteSuffix) {
			continue
		}
		switch {
		case strings.HasPrefix(sym, q):
			prefix = append(prefix, sym)
		case strings.Contains(sym, q):
			contains = append(contains, sym)
		}
	}
	sort.Strings(prefix)
	sort.Strings(contains)
	matches := append(prefix, contains...)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]SearchResult, 0, len(matches))
	for _, sym := range matches {
		in := instruments[sym]
		out = append(out, SearchResult{
			Symbol:      sym,
			FullName:    DatafeedExchange + ":" + sym,
			Description: in.BaseAsset + " / " + in.QuoteAsset,
			Exchange:    DatafeedExchange,
			Ticker:      sym,
			Type:        "crypto",
		})
	}
	return out, nil
}

// History returns bars in [from, to] (unix seconds).
func (s *DatafeedService) History(ctx context.Context, symbol, resolution string, from, to int64) (*History, error) {
	interval, err := KlineInterval(resolution)
	if err != nil {
		return nil, err
	}
	ext := splitTagged(strings.ToUpper(strings.TrimSpace(symbol)))
	if ext.Kind == ExtractUnrecognized {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, symbol)
	}

	candles, err := s.source.GetKlines(ctx, ext.Symbol, interval, time.Unix(from, 0), time.Unix(to, 0), historyLimit)
	if err != nil {
		return nil, fmt.Errorf("get klines %s %s: %w", ext.Symbol, interval, err)
	}
	if len(candles) == 0 {
		return &History{Status: "no_data"}, nil
	}

	h := &History{Status: "ok"}
	for _, c := range candles {
		h.Time = append(h.Time, c.Time)
		h.Open = append(h.Open, c.Open)
		h.High = append(h.High, c.High)
		h.Low = append(h.Low, c.Low)
		h.Close = append(h.Close, c.Close)
		h.Volume = append(h.Volume, c.Volume)
	}
	return h, nil
}

// Stream forwards live bars for symbol until ctx is done or the exchange
// stream fails.
func (s *DatafeedService) Stream(ctx context.Context, symbol, resolution string, callback func(domain.Candle)) error {
	interval, err := KlineInterval(resolution)
	if err != nil {
		return err
	}
	ext := splitTagged(strings.ToUpper(strings.TrimSpace(symbol)))
	if ext.Kind == ExtractUnrecognized {
		return fmt.Errorf("%w: %q", ErrSymbolNotFound, symbol)
	}
	return s.source.SubscribeKlines(ctx, ext.Symbol, interval, callback)
}

// PriceScale converts a tick size such as "0.01000000" to 100.
func PriceScale(tickSize string) int64 {
	tick, ok := parseDecimal(tickSize)
	if !ok || !tick.IsPositive() {
		return defaultPriceScale
	}
	scale := int64(1)
	for i := 0; i < 12; i++ {
		scaled := tick.Mul(decimal.NewFromInt(scale))
		if scaled.Equal(scaled.Truncate(0)) {
			return scale
		}
		scale *= 10
	}
	return scale
}
