package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleMarketsJSON(w http.ResponseWriter, r *http.Request) {
	views, err := s.marketService.Views(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, usecase.MsgLoadFailed)
		return
	}
	s.writeJSON(w, http.StatusOK, views)
}

type marketRow struct {
	domain.Ticker
	Price  string `json:"price"`
	Change string `json:"change"`
}

type marketViewResponse struct {
	Category domain.Category   `json:"category"`
	Sort     domain.SortConfig `json:"sort"`
	Rows     []marketRow       `json:"rows"`
}

// handleMarketViewJSON returns one category. "sort"/"dir" carry the current
// sort; "toggle" asks for a column sort on top of it.
func (s *Server) handleMarketViewJSON(w http.ResponseWriter, r *http.Request) {
	category := domain.ParseCategory(r.PathValue("category"))
	q := r.URL.Query()

	views, err := s.marketService.Views(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, usecase.MsgLoadFailed)
		return
	}

	state := usecase.NewCategoriesState().
		Loaded(views).
		SelectCategory(category).
		WithSort(sortFromQuery(q))

	rows := state.Rows()
	cfg := state.Sort
	if toggle := q.Get("toggle"); toggle != "" {
		rows, cfg, err = usecase.Resort(views.View(category), domain.SortKey(toggle), state.Sort)
		if errors.Is(err, usecase.ErrUnknownSortKey) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp := marketViewResponse{
		Category: category,
		Sort:     cfg,
		Rows:     make([]marketRow, 0, len(rows)),
	}
	for _, t := range rows {
		resp.Rows = append(resp.Rows, marketRow{
			Ticker: t,
			Price:  usecase.FormatPrice(t.LastPrice),
			Change: usecase.FormatPercent(t.PriceChangePercent),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFetchLog(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	records, err := s.marketService.RecentFetches(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list fetch log", zap.Error(err))
		http.Error(w, "Failed to list fetch log", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}
