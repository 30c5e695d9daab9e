package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Record_And_Snapshot verifies basic record and snapshot functionality.
func TestCollector_Record_And_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /", StatusCode: 200, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "ExecContext", DurationMs: 5, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "GET /activities", StatusCode: 200, DurationMs: 40, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "POST /auth/login", StatusCode: 0, DurationMs: 2, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 5 {
		t.Errorf("TotalRecorded = %d, want 5", snap.TotalRecorded)
	}
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths len = %d, want 1", len(snap.SlowestPaths))
	}
	if snap.SlowestPaths[0].AvgMs != 20 {
		t.Errorf("AvgMs = %v, want 20", snap.SlowestPaths[0].AvgMs)
	}
	if len(snap.SlowestQueries) != 1 {
		t.Errorf("SlowestQueries len = %d, want 1", len(snap.SlowestQueries))
	}
	if len(snap.SlowestUpstream) != 2 {
		t.Fatalf("SlowestUpstream len = %d, want 2", len(snap.SlowestUpstream))
	}
	if snap.SlowestUpstream[0].Path != "GET /activities" {
		t.Errorf("slowest upstream = %q, want GET /activities", snap.SlowestUpstream[0].Path)
	}
	if snap.UpstreamFailed != 1 {
		t.Errorf("UpstreamFailed = %d, want 1", snap.UpstreamFailed)
	}
}

// TestCollector_RingBuffer_Overwrites verifies oldest entries are overwritten when full.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /x", DurationMs: float64(i), Timestamp: now})
	}

	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestPaths[0].Count != 3 {
		t.Errorf("Count = %d, want 3 (ring buffer kept last 3)", snap.SlowestPaths[0].Count)
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 calculation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 101; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /", DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 5)
	if snap.RequestP50Ms != 51 {
		t.Errorf("P50 = %v, want 51", snap.RequestP50Ms)
	}
	if snap.RequestP99Ms != 100 {
		t.Errorf("P99 = %v, want 100", snap.RequestP99Ms)
	}
}

// TestCollector_SinceFilter verifies old entries are excluded.
func TestCollector_SinceFilter(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 1, Timestamp: now.Add(-time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("expected only GET /new, got %+v", snap.SlowestPaths)
	}
}

// TestCollector_NilRecord verifies a nil collector ignores entries.
func TestCollector_NilRecord(t *testing.T) {
	var c *Collector
	c.Record(Entry{Kind: KindRequest, Path: "GET /"})
}

// TestCollector_ConcurrentRecord verifies concurrent writers do not lose counts.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(Entry{Kind: KindQuery, Path: "QueryRowContext", DurationMs: 1, Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
