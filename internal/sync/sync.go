// Package sync drives the account synchronization pipelines: load the
// eligible accounts, fan out one fetch task per account, wait for all,
// then fan out one save per account and wait again before finishing.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"flocksync/internal/logging"
	"flocksync/internal/metrics"
	"flocksync/internal/model"
	"flocksync/internal/store/accountdb"
)

// State is the orchestrator's position in a pipeline invocation.
type State string

const (
	StateLoading    State = "loading"
	StateFetching   State = "fetching"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Pipeline names, also used as metric labels.
const (
	PipelineProfiles = "profiles"
	PipelineTweets   = "tweets"
	PipelineAll      = "all"
)

// Store is the account repository surface the orchestrator needs.
type Store interface {
	LoadEligible(ctx context.Context) ([]model.Account, error)
	SaveProfile(ctx context.Context, a model.Account) error
	SaveStats(ctx context.Context, a model.Account) error
}

// Fetcher is a per-account fetch step. Implementations absorb failures
// into the account's status field and never return an error.
type Fetcher interface {
	Fetch(ctx context.Context, a model.Account) model.Account
}

// Report summarizes one pipeline invocation.
type Report struct {
	State      State
	Accounts   int
	SaveErrors int
	Duration   time.Duration
}

// Orchestrator composes the fetchers and the store into pipelines.
type Orchestrator struct {
	store       Store
	profiles    Fetcher
	activity    Fetcher
	taskTimeout time.Duration
}

func New(store Store, profiles, activity Fetcher, taskTimeout time.Duration) *Orchestrator {
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}
	return &Orchestrator{store: store, profiles: profiles, activity: activity, taskTimeout: taskTimeout}
}

// RunProfiles syncs profile metadata for every eligible account.
func (o *Orchestrator) RunProfiles(ctx context.Context) (Report, error) {
	return o.run(ctx, PipelineProfiles)
}

// RunStats syncs recent-tweet aggregates for every eligible account.
func (o *Orchestrator) RunStats(ctx context.Context) (Report, error) {
	return o.run(ctx, PipelineTweets)
}

// RunAll runs the profile pipeline to completion and then the stats
// pipeline over the profile-updated account set, so the stats stage
// sees twitter ids resolved by the profile stage.
func (o *Orchestrator) RunAll(ctx context.Context) (Report, error) {
	return o.run(ctx, PipelineAll)
}

func (o *Orchestrator) run(ctx context.Context, pipeline string) (Report, error) {
	start := time.Now()
	metrics.SyncRuns.WithLabelValues(pipeline).Inc()
	rep := Report{State: StateLoading}

	accounts, err := o.store.LoadEligible(ctx)
	if err != nil {
		rep.State = StateFailed
		rep.Duration = time.Since(start)
		metrics.SyncErrors.WithLabelValues(pipeline).Inc()
		logging.Error("sync_load_failed", map[string]any{"pipeline": pipeline, "error": err.Error()})
		return rep, fmt.Errorf("load accounts: %w", err)
	}
	rep.Accounts = len(accounts)

	var saveErr error
	switch pipeline {
	case PipelineProfiles:
		_, saveErr = o.stage(ctx, &rep, accounts, o.profiles, o.store.SaveProfile)
	case PipelineTweets:
		_, saveErr = o.stage(ctx, &rep, accounts, o.activity, o.store.SaveStats)
	case PipelineAll:
		var updated []model.Account
		updated, saveErr = o.stage(ctx, &rep, accounts, o.profiles, o.store.SaveProfile)
		_, statsErr := o.stage(ctx, &rep, updated, o.activity, o.store.SaveStats)
		saveErr = errors.Join(saveErr, statsErr)
	}

	rep.State = StateDone
	rep.Duration = time.Since(start)
	metrics.AccountsSynced.Add(float64(rep.Accounts))
	metrics.ObserveSyncDuration(pipeline, start)
	logging.Info("sync_done", map[string]any{
		"pipeline": pipeline, "accounts": rep.Accounts, "save_errors": rep.SaveErrors,
		"duration_ms": rep.Duration.Milliseconds(),
	})
	return rep, saveErr
}

// stage runs one fetch fan-out followed by one save fan-out. All fetch
// tasks are launched before any is awaited; the save fan-out starts
// only after every fetch has resolved. Each task gets its own bounded
// timeout so a hung call cannot stall the stage forever. Save errors
// are counted and reported after every sibling save has finished.
func (o *Orchestrator) stage(ctx context.Context, rep *Report, accounts []model.Account, f Fetcher, save func(context.Context, model.Account) error) ([]model.Account, error) {
	rep.State = StateFetching
	fetched := make([]model.Account, len(accounts))
	var fg errgroup.Group
	for i, a := range accounts {
		fg.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, o.taskTimeout)
			defer cancel()
			fetched[i] = f.Fetch(tctx, a)
			return nil
		})
	}
	_ = fg.Wait()

	rep.State = StatePersisting
	var saveErrs atomic.Int64
	var sg errgroup.Group
	for _, a := range fetched {
		sg.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, o.taskTimeout)
			defer cancel()
			if err := save(tctx, a); err != nil {
				saveErrs.Add(1)
				var rce *accountdb.RowCountError
				if errors.As(err, &rce) {
					metrics.SaveAnomalies.Inc()
				}
				logging.Error("account_save_failed", map[string]any{"account": a.ID, "error": err.Error()})
				return err
			}
			return nil
		})
	}
	err := sg.Wait()
	rep.SaveErrors += int(saveErrs.Load())
	return fetched, err
}

// RunLoop runs the combined pipeline immediately and then on every
// tick until ctx is cancelled.
func (o *Orchestrator) RunLoop(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	if _, err := o.RunAll(ctx); err != nil {
		logging.Error("sync_run_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("sync_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := o.RunAll(ctx); err != nil {
				logging.Error("sync_run_error", map[string]any{"error": err.Error()})
			}
		}
	}
}
