package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JustinTDCT/mediacat/internal/metrics"
)

type fixedCounter struct {
	counts *Counts
	err    error
	calls  atomic.Int32
}

func (f *fixedCounter) Counts(context.Context) (*Counts, error) {
	f.calls.Add(1)
	return f.counts, f.err
}

func TestStatsHandler(t *testing.T) {
	counter := &fixedCounter{counts: &Counts{Users: 4, ActiveUsers: 3, Media: 12, Streams: 7}}
	rec := httptest.NewRecorder()
	NewHandler(counter).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{"users": 4, "active_users": 3, "media": 12, "streams": 7}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
}

func TestStatsHandlerHidesStoreError(t *testing.T) {
	counter := &fixedCounter{err: errors.New("pq: relation \"users\" does not exist")}
	rec := httptest.NewRecorder()
	NewHandler(counter).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct{ Message string }
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Message != "Unexpected error" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestCollectorRecordsGauges(t *testing.T) {
	counter := &fixedCounter{counts: &Counts{Users: 2, ActiveUsers: 1, Media: 9, Streams: 5}}
	c, err := NewCollector(counter, "@every 1h")
	if err != nil {
		t.Fatal(err)
	}
	c.collect()

	if v := testutil.ToFloat64(metrics.CatalogSize.WithLabelValues("media")); v != 9 {
		t.Errorf("media gauge = %v", v)
	}
	if v := testutil.ToFloat64(metrics.CatalogSize.WithLabelValues("active_users")); v != 1 {
		t.Errorf("active_users gauge = %v", v)
	}
}

func TestCollectorStartStop(t *testing.T) {
	counter := &fixedCounter{counts: &Counts{}}
	c, err := NewCollector(counter, "@every 1h")
	if err != nil {
		t.Fatal(err)
	}
	c.Start()
	deadline := time.Now().Add(2 * time.Second)
	for counter.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	c.Stop()
	if counter.calls.Load() == 0 {
		t.Error("no collection on start")
	}
}

func TestCollectorRejectsBadSchedule(t *testing.T) {
	if _, err := NewCollector(&fixedCounter{}, "every minute"); err == nil {
		t.Error("expected schedule error")
	}
}
