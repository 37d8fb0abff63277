package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"go.uber.org/zap"
)

const (
	BinanceBaseURL = "https://api.binance.com"
	BinanceWSURL   = "wss://stream.binance.com:9443"
)

// BinanceAdapter talks to the public (unauthenticated) Binance spot API.
type BinanceAdapter struct {
	baseURL string
	wsURL   string
	client  *http.Client
	dialer  *websocket.Dialer
	logger  *zap.Logger
}

func NewBinanceAdapter(baseURL, wsURL string, timeout time.Duration, logger *zap.Logger) *BinanceAdapter {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	if wsURL == "" {
		wsURL = BinanceWSURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		wsURL:   strings.TrimRight(wsURL, "/"),
		client:  &http.Client{Timeout: timeout},
		dialer:  websocket.DefaultDialer,
		logger:  logger,
	}
}

// --- REST API ---

func (b *BinanceAdapter) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error [%s]: %s - %s", path, resp.Status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (b *BinanceAdapter) Get24hrTickers(ctx context.Context) ([]domain.Ticker, error) {
	var tickers []domain.Ticker
	if err := b.getJSON(ctx, "/api/v3/ticker/24hr", nil, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

func (b *BinanceAdapter) GetKlines(ctx context.Context, symbol, interval string, start, end time.Time, limit int) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	if !start.IsZero() {
		q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if !end.IsZero() {
		q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	// Format: [openTime, open, high, low, close, volume, closeTime, ...]
	var rows [][]json.RawMessage
	if err := b.getJSON(ctx, "/api/v3/klines", q, &rows); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, raw := range rows {
		if len(raw) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(raw[0], &openTime); err != nil {
			continue
		}
		vals, err := klineValues(raw[1:6])
		if err != nil {
			b.logger.Warn("Bad kline row", zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		candles = append(candles, domain.Candle{
			Time:   openTime / 1000,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles, nil
}

func (b *BinanceAdapter) GetInstruments(ctx context.Context) ([]domain.Instrument, error) {
	var result struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
			Filters    []struct {
				FilterType string `json:"filterType"`
				TickSize   string `json:"tickSize"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := b.getJSON(ctx, "/api/v3/exchangeInfo", nil, &result); err != nil {
		return nil, err
	}

	var instruments []domain.Instrument
	for _, item := range result.Symbols {
		if item.Status != "TRADING" {
			continue
		}
		in := domain.Instrument{
			Symbol:     item.Symbol,
			BaseAsset:  item.BaseAsset,
			QuoteAsset: item.QuoteAsset,
			Status:     item.Status,
		}
		for _, f := range item.Filters {
			if f.FilterType == "PRICE_FILTER" {
				in.TickSize = f.TickSize
			}
		}
		instruments = append(instruments, in)
	}
	return instruments, nil
}

// --- WebSocket ---

type klineEvent struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Kline  struct {
		StartTime int64  `json:"t"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
	} `json:"k"`
}

// SubscribeKlines streams kline updates for one symbol into callback. It
// blocks until ctx is cancelled (returning nil) or the connection fails.
func (b *BinanceAdapter) SubscribeKlines(ctx context.Context, symbol, interval string, callback func(domain.Candle)) error {
	stream := fmt.Sprintf("%s/ws/%s@kline_%s", b.wsURL, strings.ToLower(symbol), interval)
	conn, _, err := b.dialer.DialContext(ctx, stream, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", stream, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	b.logger.Debug("Kline stream opened", zap.String("symbol", symbol), zap.String("interval", interval))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("kline stream %s: %w", symbol, err)
		}

		var ev klineEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			b.logger.Warn("WS unmarshal error", zap.Error(err))
			continue
		}
		if ev.Event != "kline" {
			continue
		}

		candle, err := ev.candle()
		if err != nil {
			b.logger.Warn("Bad kline payload", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		callback(candle)
	}
}

var errBadKline = errors.New("bad kline values")

// klineValues decodes the open, high, low, close and volume strings of a REST
// kline row.
func klineValues(fields []json.RawMessage) ([5]float64, error) {
	var vals [5]float64
	for i, raw := range fields {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return vals, fmt.Errorf("%w: %s", errBadKline, raw)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return vals, fmt.Errorf("%w: %q", errBadKline, s)
		}
		vals[i] = v
	}
	return vals, nil
}

func (ev klineEvent) candle() (domain.Candle, error) {
	k := ev.Kline
	var vals [5]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("%w: %q", errBadKline, s)
		}
		vals[i] = v
	}
	return domain.Candle{
		Time:   k.StartTime / 1000,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
