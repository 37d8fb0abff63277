package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_market_overview/internal/infrastructure/metrics"
	"github.com/vitos/crypto_market_overview/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router          *http.ServeMux
	server          *http.Server
	marketService   *usecase.MarketService
	datafeedService *usecase.DatafeedService
	chartDefaults   usecase.ChartDefaults
	staticDir       string
	upgrader        websocket.Upgrader
	logger          *zap.Logger
}

func NewServer(
	port int,
	marketService *usecase.MarketService,
	datafeedService *usecase.DatafeedService,
	chartDefaults usecase.ChartDefaults,
	staticDir string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		marketService:   marketService,
		datafeedService: datafeedService,
		chartDefaults:   chartDefaults,
		staticDir:       staticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Pages
	s.router.HandleFunc("GET /{$}", s.handleCategories)
	s.router.HandleFunc("GET /chart/{$}", s.handleChartDefault)
	s.router.HandleFunc("GET /chart/{symbol}", s.handleChart)

	// Markets
	s.router.HandleFunc("GET /api/markets", s.handleMarketsJSON)
	s.router.HandleFunc("GET /api/markets/{category}", s.handleMarketViewJSON)
	s.router.HandleFunc("GET /api/fetch-log", s.handleFetchLog)

	// Chart bridge
	s.router.HandleFunc("GET /api/chart/{symbol}/options", s.handleChartOptions)
	s.router.HandleFunc("POST /api/chart/symbol-changed", s.handleSymbolChanged)

	// Datafeed
	s.router.HandleFunc("GET /api/udf/config", s.handleUDFConfig)
	s.router.HandleFunc("GET /api/udf/symbols", s.handleUDFSymbols)
	s.router.HandleFunc("GET /api/udf/search", s.handleUDFSearch)
	s.router.HandleFunc("GET /api/udf/history", s.handleUDFHistory)
	s.router.HandleFunc("GET /api/udf/time", s.handleUDFTime)
	s.router.HandleFunc("GET /api/udf/stream", s.handleUDFStream)

	// Charting library and other static files
	s.router.Handle("GET /scripts/", http.FileServer(http.Dir(s.staticDir)))

	// Ops
	s.router.Handle("GET /metrics", metrics.Handler())
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
