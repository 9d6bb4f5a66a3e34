package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SyncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocksync_sync_runs_total",
		Help: "Total sync pipeline runs",
	}, []string{"pipeline"})
	SyncErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocksync_sync_errors_total",
		Help: "Total failed sync pipeline runs",
	}, []string{"pipeline"})
	SyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flocksync_sync_duration_seconds",
		Help:    "Sync pipeline duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"pipeline"})
	AccountsSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flocksync_accounts_synced_total",
		Help: "Total accounts processed across sync runs",
	})
	SaveAnomalies = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flocksync_save_anomalies_total",
		Help: "Total account saves that matched a row count other than one",
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocksync_api_retries_total",
		Help: "Total Twitter API retry attempts",
	}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(SyncRuns, SyncErrors, SyncDuration, AccountsSynced, SaveAnomalies, APIRetries)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveSyncDuration records a pipeline run duration.
func ObserveSyncDuration(pipeline string, start time.Time) {
	SyncDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }
