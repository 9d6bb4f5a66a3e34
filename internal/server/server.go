// Package server exposes the sync trigger surface over HTTP. Each
// route blocks until its pipeline invocation finishes and reports only
// coarse success or failure; per-account outcomes live in the store.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"flocksync/internal/logging"
	"flocksync/internal/sync"
)

// Syncer is the orchestrator surface the routes need.
type Syncer interface {
	RunProfiles(ctx context.Context) (sync.Report, error)
	RunStats(ctx context.Context) (sync.Report, error)
	RunAll(ctx context.Context) (sync.Report, error)
}

// New builds the trigger router: /profiles, /tweets, / (combined),
// plus /healthz.
func New(s Syncer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(noCache)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/profiles", runHandler("profiles", s.RunProfiles))
	r.Get("/tweets", runHandler("tweets", s.RunStats))
	r.Get("/", runHandler("all", s.RunAll))
	return r
}

type reportBody struct {
	State      string `json:"state"`
	Accounts   int    `json:"accounts"`
	SaveErrors int    `json:"saveErrors"`
}

func runHandler(name string, run func(ctx context.Context) (sync.Report, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := run(r.Context())
		if err != nil && rep.State == sync.StateFailed {
			logging.Error("trigger_failed", map[string]any{"pipeline": name, "error": err.Error()})
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if err != nil {
			// pipeline completed; save anomalies are reported in the body
			logging.Warn("trigger_completed_with_errors", map[string]any{"pipeline": name, "error": err.Error()})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reportBody{
			State:      string(rep.State),
			Accounts:   rep.Accounts,
			SaveErrors: rep.SaveErrors,
		})
	}
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, max-age=0, no-cache, no-store, must-revalidate")
		w.Header().Set("Expires", "0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
