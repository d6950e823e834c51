package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_RecordAndSnapshot verifies requests and statements are aggregated separately.
func TestCollector_RecordAndSnapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /directory", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /directory", StatusCode: 503, Failed: true, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "SELECT programs", DurationMs: 5, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 3 {
		t.Errorf("TotalRecorded = %d, want 3", snap.TotalRecorded)
	}
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths len = %d, want 1", len(snap.SlowestPaths))
	}
	got := snap.SlowestPaths[0]
	if got.AvgMs != 20 || got.MaxMs != 30 || got.Failures != 1 {
		t.Errorf("unexpected path stat %+v", got)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Path != "SELECT programs" {
		t.Fatalf("SlowestQueries = %+v", snap.SlowestQueries)
	}
}

// TestCollector_RingOverwrites verifies only the newest entries are kept.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /", DurationMs: float64(i), Timestamp: now})
	}
	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestPaths[0].Count != 3 {
		t.Errorf("Count = %d, want 3", snap.SlowestPaths[0].Count)
	}
	if snap.SlowestPaths[0].AvgMs != 3 {
		t.Errorf("AvgMs = %v, want 3 (entries 2,3,4)", snap.SlowestPaths[0].AvgMs)
	}
}

// TestCollector_Percentiles verifies interpolated percentiles over 1..100ms.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /center", DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	checks := []struct {
		name   string
		got    float64
		lo, hi float64
	}{
		{"p50", snap.RequestP50Ms, 49, 51},
		{"p95", snap.RequestP95Ms, 94, 96},
		{"p99", snap.RequestP99Ms, 98, 100},
	}
	for _, ck := range checks {
		if ck.got < ck.lo || ck.got > ck.hi {
			t.Errorf("%s = %v, want within [%v, %v]", ck.name, ck.got, ck.lo, ck.hi)
		}
	}
}

// TestCollector_SnapshotSince verifies old entries are excluded.
func TestCollector_SnapshotSince(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("SlowestPaths = %+v, want only GET /new", snap.SlowestPaths)
	}
}

// TestCollector_TopN verifies ordering and truncation.
func TestCollector_TopN(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindQuery, Path: "SELECT centers", DurationMs: 2, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "SELECT programs", DurationMs: 9, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "INSERT programs", DurationMs: 4, Timestamp: now})

	snap := c.Snapshot(time.Time{}, 2)
	if len(snap.SlowestQueries) != 2 {
		t.Fatalf("len = %d, want 2", len(snap.SlowestQueries))
	}
	if snap.SlowestQueries[0].Path != "SELECT programs" || snap.SlowestQueries[1].Path != "INSERT programs" {
		t.Errorf("order = %+v", snap.SlowestQueries)
	}
}

// TestCollector_NilSafe verifies a nil collector is a no-op.
func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Record(Entry{Path: "GET /"})
	if c.TotalRecorded() != 0 {
		t.Error("nil collector should report zero")
	}
	if snap := c.Snapshot(time.Time{}, 5); len(snap.SlowestPaths) != 0 {
		t.Error("nil collector snapshot should be empty")
	}
}

// TestCollector_ConcurrentRecord verifies Record is safe under concurrent use.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(Entry{Kind: KindRequest, Path: "GET /", DurationMs: 1})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
