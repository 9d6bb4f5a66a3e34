package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	SyncRuns.WithLabelValues("profiles").Inc()
	SyncErrors.WithLabelValues("profiles").Inc()
	AccountsSynced.Add(3)
	SaveAnomalies.Inc()
	IncAPIRetry("users/show")
	ObserveSyncDuration("profiles", time.Now().Add(-1500*time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"flocksync_sync_runs_total",
		"flocksync_sync_errors_total",
		"flocksync_sync_duration_seconds",
		"flocksync_accounts_synced_total",
		"flocksync_save_anomalies_total",
		"flocksync_api_retries_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
