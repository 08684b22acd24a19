package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/content-weaver/internal/storage"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementProcessed counts a page that produced a record
func (t *Tracker) IncrementProcessed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Processed++
}

// IncrementSkipped counts a page that failed to fetch or had nothing to record
func (t *Tracker) IncrementSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Skipped++
}

// IncrementEmptyContent counts a page whose sections all came out empty
func (t *Tracker) IncrementEmptyContent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.EmptyContent++
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// AddLinksDiscovered adds the number of same-domain links found on a page
func (t *Tracker) AddLinksDiscovered(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksDiscovered += n
}

// Stats returns the page counters of the run
func (t *Tracker) Stats() storage.CrawlStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return storage.CrawlStats{
		Processed:    t.data.Processed,
		Skipped:      t.data.Skipped,
		EmptyContent: t.data.EmptyContent,
	}
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() storage.Metrics {
	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs
	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}
	return snapshot
}

// WriteToFile stamps the end time and termination reason, then exports the
// metrics as indented JSON
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	jsonData, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// LogProgress formats current metrics for periodic console updates
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Pages: %d processed, %d skipped, %d empty | Fetches: %d ok, %d failed | Links: %d",
		t.data.Processed,
		t.data.Skipped,
		t.data.EmptyContent,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.LinksDiscovered,
	)
}
