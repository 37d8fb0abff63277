package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "overview_snapshot_fetches_total",
		Help: "Ticker snapshot fetches by result",
	}, []string{"result"})

	SnapshotLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "overview_snapshot_fetch_seconds",
		Help:    "Time to fetch the 24h ticker snapshot",
		Buckets: prometheus.DefBuckets,
	})

	FilteredTickers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "overview_filtered_tickers",
		Help: "Tickers passing the liquidity and quote filter in the last snapshot",
	})

	ChartNavigations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "overview_chart_navigations_total",
		Help: "Navigations triggered by a symbol change inside the chart widget",
	})

	PayloadsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "overview_widget_payload_dropped_total",
		Help: "Symbol change payloads that carried no recognizable symbol",
	})

	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "overview_stream_clients",
		Help: "Open chart bar streams",
	})
)

func init() {
	prometheus.MustRegister(
		SnapshotFetches,
		SnapshotLatency,
		FilteredTickers,
		ChartNavigations,
		PayloadsDropped,
		StreamClients,
	)
}

// Handler serves the default registry in OpenMetrics format when asked.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
