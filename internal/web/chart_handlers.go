package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/crypto_market_overview/internal/infrastructure/metrics"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

func (s *Server) handleChartOptions(w http.ResponseWriter, r *http.Request) {
	state := usecase.NewChartState(r.PathValue("symbol"))
	locale := usecase.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"))
	s.writeJSON(w, http.StatusOK, s.chartDefaults.Options(state.CurrentSymbol, locale))
}

type symbolChangedRequest struct {
	Current string      `json:"current"`
	Payload interface{} `json:"payload"`
}

type symbolChangedResponse struct {
	Navigate bool   `json:"navigate"`
	Path     string `json:"path,omitempty"`
	Symbol   string `json:"symbol"`
	Key      string `json:"key"`
}

// handleSymbolChanged receives the widget's symbol-changed event from the
// chart page and tells the page whether to navigate.
func (s *Server) handleSymbolChanged(w http.ResponseWriter, r *http.Request) {
	var req symbolChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := usecase.NewChartState(req.Current)
	next, nav, err := state.OnWidgetSymbolChange(req.Payload)
	if errors.Is(err, usecase.ErrUnrecognizedPayload) {
		s.logger.Warn("Chart symbol change returned an unexpected format", zap.Any("payload", req.Payload))
		metrics.PayloadsDropped.Inc()
	}

	resp := symbolChangedResponse{
		Symbol: next.CurrentSymbol,
		Key:    next.Key(),
	}
	if nav != nil {
		metrics.ChartNavigations.Inc()
		resp.Navigate = true
		resp.Path = nav.Path
	}
	s.writeJSON(w, http.StatusOK, resp)
}
