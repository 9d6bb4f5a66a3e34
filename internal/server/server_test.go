package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flocksync/internal/sync"
)

type fakeSyncer struct {
	calls []string
	err   error
	state sync.State
}

func (f *fakeSyncer) run(name string) (sync.Report, error) {
	f.calls = append(f.calls, name)
	state := f.state
	if state == "" {
		state = sync.StateDone
	}
	return sync.Report{State: state, Accounts: 2}, f.err
}

func (f *fakeSyncer) RunProfiles(context.Context) (sync.Report, error) { return f.run("profiles") }
func (f *fakeSyncer) RunStats(context.Context) (sync.Report, error)    { return f.run("tweets") }
func (f *fakeSyncer) RunAll(context.Context) (sync.Report, error)      { return f.run("all") }

func TestRoutesInvokePipelines(t *testing.T) {
	for path, want := range map[string]string{
		"/profiles": "profiles",
		"/tweets":   "tweets",
		"/":         "all",
	} {
		f := &fakeSyncer{}
		h := New(f)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if len(f.calls) != 1 || f.calls[0] != want {
			t.Fatalf("%s: calls %v, want [%s]", path, f.calls, want)
		}
		if !strings.Contains(rec.Body.String(), `"accounts":2`) {
			t.Fatalf("%s: body %q", path, rec.Body.String())
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
			t.Fatalf("%s: missing no-cache header, got %q", path, cc)
		}
	}
}

func TestFailedPipelineReturns502(t *testing.T) {
	f := &fakeSyncer{err: errors.New("load accounts: no such host"), state: sync.StateFailed}
	h := New(f)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestSaveErrorsStillReturn200(t *testing.T) {
	f := &fakeSyncer{err: errors.New("save_profile: account a2 matched 0 rows, want 1"), state: sync.StateDone}
	h := New(f)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("completed pipeline should report 200, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := New(&fakeSyncer{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
}
