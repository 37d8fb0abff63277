package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"go.uber.org/zap"
)

func newTestAdapter(srv *httptest.Server) *BinanceAdapter {
	ws := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewBinanceAdapter(srv.URL, ws, time.Second, zap.NewNop())
}

func TestGet24hrTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","lastPrice":"43251.12000000","priceChangePercent":"2.130","quoteVolume":"1234567890.5","count":12},
			{"symbol":"ETHBTC","lastPrice":"0.05","priceChangePercent":"-1.1","quoteVolume":"99"}
		]`))
	}))
	defer srv.Close()

	tickers, err := newTestAdapter(srv).Get24hrTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, domain.Ticker{
		Symbol:             "BTCUSDT",
		LastPrice:          "43251.12000000",
		PriceChangePercent: "2.130",
		QuoteVolume:        "1234567890.5",
	}, tickers[0])
}

func TestGet24hrTickers_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv).Get24hrTickers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error [/api/v3/ticker/24hr]")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestGet24hrTickers_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-1}`))
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv).Get24hrTickers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /api/v3/ticker/24hr")
}

func TestGetKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "1h", q.Get("interval"))
		assert.Equal(t, "1700000000000", q.Get("startTime"))
		assert.Equal(t, "1700003600000", q.Get("endTime"))
		assert.Equal(t, "1000", q.Get("limit"))
		w.Write([]byte(`[
			[1700000000000,"1.0","2.0","0.5","1.5","10.0",1700003599999,"15.0",3,"5.0","7.5","0"],
			[1700003600000,"1.5","3.0","1.0","2.5","20.0",1700007199999,"50.0",4,"9.0","2.0","0"]
		]`))
	}))
	defer srv.Close()

	candles, err := newTestAdapter(srv).GetKlines(context.Background(), "BTCUSDT", "1h",
		time.Unix(1700000000, 0), time.Unix(1700003600, 0), 1000)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, domain.Candle{Time: 1700000000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}, candles[0])
	assert.Equal(t, int64(1700003600), candles[1].Time)
}

func TestGetKlines_SkipsBadRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			[1700000000000,"1.0",2.0,"0.5","1.5","10.0"],
			[1700003600000,"1.5","abc","1.0","2.5","20.0"],
			[1700007200000,"2.5","3.0","2.0","2.75","30.0"]
		]`))
	}))
	defer srv.Close()

	candles, err := newTestAdapter(srv).GetKlines(context.Background(), "BTCUSDT", "1h", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, domain.Candle{Time: 1700007200, Open: 2.5, High: 3, Low: 2, Close: 2.75, Volume: 30}, candles[0])
}

func TestGetInstruments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT",
			 "filters":[{"filterType":"LOT_SIZE","stepSize":"0.00001"},{"filterType":"PRICE_FILTER","tickSize":"0.01000000"}]},
			{"symbol":"OLDUSDT","status":"BREAK","baseAsset":"OLD","quoteAsset":"USDT","filters":[]}
		]}`))
	}))
	defer srv.Close()

	instruments, err := newTestAdapter(srv).GetInstruments(context.Background())
	require.NoError(t, err)
	require.Len(t, instruments, 1)
	assert.Equal(t, "BTCUSDT", instruments[0].Symbol)
	assert.Equal(t, "BTC", instruments[0].BaseAsset)
	assert.Equal(t, "0.01000000", instruments[0].TickSize)
}

func TestSubscribeKlines_ServerClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/btcusdt@kline_1m", r.URL.Path)
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		c.WriteMessage(websocket.TextMessage, []byte(`{"e":"kline","s":"BTCUSDT","k":{"t":1700000040000,"o":"1","h":"2","l":"0.5","c":"1.5","v":"3"}}`))
		c.WriteMessage(websocket.TextMessage, []byte(`{"e":"trade","s":"BTCUSDT"}`))
		c.WriteMessage(websocket.TextMessage, []byte(`{"e":"kline","s":"BTCUSDT","k":{"t":1,"o":"x","h":"2","l":"0.5","c":"1.5","v":"3"}}`))
		c.WriteMessage(websocket.TextMessage, []byte(`not json`))
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	var got []domain.Candle
	err := newTestAdapter(srv).SubscribeKlines(context.Background(), "BTCUSDT", "1m", func(c domain.Candle) {
		got = append(got, c)
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Candle{Time: 1700000040, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 3}, got[0])
}

func TestSubscribeKlines_ContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := newTestAdapter(srv).SubscribeKlines(ctx, "ETHUSDT", "5m", func(domain.Candle) {})
	assert.NoError(t, err)
}

func TestSubscribeKlines_DialError(t *testing.T) {
	a := NewBinanceAdapter("http://127.0.0.1:1", "ws://127.0.0.1:1", time.Second, zap.NewNop())
	err := a.SubscribeKlines(context.Background(), "BTCUSDT", "1m", func(domain.Candle) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial ")
}
