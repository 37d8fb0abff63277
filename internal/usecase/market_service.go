package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_market_overview/internal/domain"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// MarketService fetches one ticker snapshot per page load and ranks it.
// It never retries; a failed fetch is reported to the caller as is.
type MarketService struct {
	source   domain.TickerSource
	fetchLog domain.FetchLogRepository
	ranker   *Ranker
	logger   *zap.Logger
	timeNow  func() time.Time // For testing
}

// NewMarketService builds the service. fetchLog may be nil.
func NewMarketService(source domain.TickerSource, fetchLog domain.FetchLogRepository, ranker *Ranker, logger *zap.Logger) *MarketService {
	if ranker == nil {
		ranker = NewRanker()
	}
	return &MarketService{
		source:   source,
		fetchLog: fetchLog,
		ranker:   ranker,
		logger:   logger,
		timeNow:  time.Now,
	}
}

// Views fetches the snapshot and returns the ranked views.
func (s *MarketService) Views(ctx context.Context) (domain.MarketViews, error) {
	start := s.timeNow()
	tickers, err := s.source.Get24hrTickers(ctx)
	elapsed := s.timeNow().Sub(start)
	metrics.SnapshotLatency.Observe(elapsed.Seconds())

	rec := &domain.FetchRecord{
		Duration:  elapsed.Milliseconds(),
		CreatedAt: start,
	}

	if err != nil {
		metrics.SnapshotFetches.WithLabelValues("error").Inc()
		s.logger.Error("Failed to fetch ticker snapshot", zap.Error(err))
		rec.Error = err.Error()
		s.record(ctx, rec)
		return domain.MarketViews{}, fmt.Errorf("fetch ticker snapshot: %w", err)
	}

	filtered := s.ranker.Filter(tickers)
	views := s.ranker.RankFiltered(filtered)

	metrics.SnapshotFetches.WithLabelValues("ok").Inc()
	metrics.FilteredTickers.Set(float64(len(filtered)))
	s.logger.Debug("Ticker snapshot ranked",
		zap.Int("total", len(tickers)),
		zap.Int("filtered", len(filtered)),
		zap.Duration("elapsed", elapsed))

	rec.Total = len(tickers)
	rec.Filtered = len(filtered)
	s.record(ctx, rec)
	return views, nil
}

// Load runs the page-mount fetch and returns the resulting page state.
func (s *MarketService) Load(ctx context.Context) CategoriesState {
	state := NewCategoriesState()
	views, err := s.Views(ctx)
	if err != nil {
		return state.Failed()
	}
	return state.Loaded(views)
}

// RecentFetches lists the fetch log, newest first. Without a log it is empty.
func (s *MarketService) RecentFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	if s.fetchLog == nil {
		return []*domain.FetchRecord{}, nil
	}
	return s.fetchLog.ListFetches(ctx, limit)
}

func (s *MarketService) record(ctx context.Context, rec *domain.FetchRecord) {
	if s.fetchLog == nil {
		return
	}
	if err := s.fetchLog.SaveFetch(ctx, rec); err != nil {
		s.logger.Warn("Failed to save fetch record", zap.Error(err))
	}
}
