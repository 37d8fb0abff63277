package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/metrics"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

// UDF endpoints consumed by the charting library's stock UDF datafeed.

func (s *Server) udfError(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusOK, map[string]string{"s": "error", "errmsg": msg})
}

func (s *Server) handleUDFConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.datafeedService.Config())
}

func (s *Server) handleUDFSymbols(w http.ResponseWriter, r *http.Request) {
	info, err := s.datafeedService.ResolveSymbol(r.Context(), r.URL.Query().Get("symbol"))
	if errors.Is(err, usecase.ErrSymbolNotFound) {
		s.udfError(w, "unknown_symbol")
		return
	}
	if err != nil {
		s.logger.Error("Failed to resolve symbol", zap.Error(err))
		http.Error(w, "Failed to resolve symbol", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleUDFSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 30
	}

	results, err := s.datafeedService.SearchSymbols(r.Context(), q.Get("query"), limit)
	if err != nil {
		s.logger.Error("Failed to search symbols", zap.Error(err))
		http.Error(w, "Failed to search symbols", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleUDFHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := strconv.ParseInt(q.Get("from"), 10, 64)
	to, errTo := strconv.ParseInt(q.Get("to"), 10, 64)
	if errFrom != nil || errTo != nil {
		http.Error(w, "from and to must be unix seconds", http.StatusBadRequest)
		return
	}

	hist, err := s.datafeedService.History(r.Context(), q.Get("symbol"), q.Get("resolution"), from, to)
	switch {
	case errors.Is(err, usecase.ErrUnknownResolution), errors.Is(err, usecase.ErrSymbolNotFound):
		s.udfError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("Failed to load history", zap.Error(err))
		http.Error(w, "Failed to load history", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handleUDFTime(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(strconv.FormatInt(time.Now().Unix(), 10)))
}

// handleUDFStream relays live exchange bars to the chart page over a
// websocket until either side goes away.
func (s *Server) handleUDFStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol, resolution := q.Get("symbol"), q.Get("resolution")
	if _, err := usecase.KlineInterval(resolution); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The page never sends anything; a read error means it left.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = s.datafeedService.Stream(ctx, symbol, resolution, func(c domain.Candle) {
		if err := conn.WriteJSON(c); err != nil {
			cancel()
		}
	})
	if err != nil {
		s.logger.Warn("Bar stream ended", zap.String("symbol", symbol), zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream failed"))
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
