package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/alvmarrod/content-weaver/internal/extract"
	"github.com/alvmarrod/content-weaver/internal/memory"
	"github.com/alvmarrod/content-weaver/internal/metrics"
	"github.com/alvmarrod/content-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrInvalidSeed is returned by Run when the seed is not an absolute http(s) URL
var ErrInvalidSeed = errors.New("invalid seed URL")

// ErrAlreadyRunning is returned by Run when the crawler is mid-run
var ErrAlreadyRunning = errors.New("crawl already running")

// Termination reasons reported in metrics
const (
	ReasonFrontierEmpty  = "frontier_empty"
	ReasonMaxURLsReached = "max_urls_reached"
	ReasonCancelled      = "cancelled"
)

// progressEvery controls how often a progress line is logged, in visited pages
const progressEvery = 10

// State is the lifecycle stage of a Crawler
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Crawler orchestrates a bounded breadth-first crawl of one site.
// All run state lives on the instance; separate Crawlers run independently.
type Crawler struct {
	fetcher Fetcher
	sink    storage.Sink

	mu     sync.Mutex
	state  State
	reason string

	frontier *Frontier
	graph    *memory.LinkGraph
	tracker  *metrics.Tracker
	records  []storage.ContentRecord
	nextID   int
}

// NewCrawler creates a crawler instance. sink may be nil.
func NewCrawler(fetcher Fetcher, sink storage.Sink) *Crawler {
	return &Crawler{
		fetcher:  fetcher,
		sink:     sink,
		frontier: NewFrontier(),
		graph:    memory.NewLinkGraph(),
		tracker:  metrics.NewTracker(),
	}
}

// State returns the current lifecycle stage
func (c *Crawler) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TerminationReason explains why the last run stopped
func (c *Crawler) TerminationReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Tracker returns the metrics of the last run
func (c *Crawler) Tracker() *metrics.Tracker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker
}

// Run crawls from seedURL until the frontier empties, maxURLs pages have been
// visited or ctx is cancelled. Per-page failures are counted, never returned.
// The result is handed to the sink; a sink error is returned together with
// the complete result.
func (c *Crawler) Run(ctx context.Context, seedURL string, maxURLs int) (*storage.Result, error) {
	if err := validateSeed(seedURL); err != nil {
		return nil, err
	}
	if maxURLs < 1 {
		return nil, fmt.Errorf("max URLs must be >= 1, got %d", maxURLs)
	}
	if err := c.start(); err != nil {
		return nil, err
	}

	logrus.Infof("Starting crawl of %s (max %d URLs)", seedURL, maxURLs)
	c.frontier.Enqueue(seedURL)

	reason := c.loop(ctx, maxURLs)
	result := c.finish(seedURL, reason)

	nodes, edges := c.graph.GetStats()
	snapshot := c.tracker.GetSnapshot()
	logrus.Infof("Crawl finished (%s): %d visited, %d pending | graph %d nodes/%d edges | avg fetch %dms | %s",
		reason, result.Visited, result.Pending, nodes, edges, snapshot.AvgFetchTimeMs, c.tracker.LogProgress())
	if result.Pending > 0 {
		logrus.Debugf("Left unvisited: %v", c.frontier.Pending())
	}

	if c.sink == nil {
		return result, nil
	}
	if err := c.sink.Write(result); err != nil {
		return result, fmt.Errorf("failed to write crawl result: %w", err)
	}
	return result, nil
}

func (c *Crawler) loop(ctx context.Context, maxURLs int) string {
	for {
		if ctx.Err() != nil {
			return ReasonCancelled
		}
		if c.frontier.Visited() >= maxURLs {
			return ReasonMaxURLsReached
		}

		pageURL, ok := c.frontier.Dequeue()
		if !ok {
			return ReasonFrontierEmpty
		}

		// Re-check: never spend a visit slot on an already processed page
		if !c.frontier.MarkVisited(pageURL) {
			logrus.Debugf("Already visited %s, discarding", pageURL)
			continue
		}

		c.processPage(pageURL, maxURLs)

		if visited := c.frontier.Visited(); visited%progressEvery == 0 {
			logrus.Infof("Progress: %d visited, %d queued | %s", visited, c.frontier.Size(), c.tracker.LogProgress())
		}
	}
}

// start resets run state and moves to Running
func (c *Crawler) start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return ErrAlreadyRunning
	}

	c.state = StateRunning
	c.reason = ""
	c.frontier = NewFrontier()
	c.graph = memory.NewLinkGraph()
	c.tracker = metrics.NewTracker()
	c.records = nil
	c.nextID = 0
	return nil
}

func (c *Crawler) finish(seedURL, reason string) *storage.Result {
	c.mu.Lock()
	c.state = StateDone
	c.reason = reason
	c.mu.Unlock()

	records := make([]storage.ContentRecord, len(c.records))
	copy(records, c.records)

	return &storage.Result{
		SeedURL:  seedURL,
		Records:  records,
		Stats:    c.tracker.Stats(),
		Links:    c.graph.Links(),
		Visited:  c.frontier.Visited(),
		Pending:  c.frontier.Size(),
		Finished: time.Now(),
	}
}

func (c *Crawler) processPage(pageURL string, maxURLs int) {
	start := time.Now()
	body, err := c.fetcher.Fetch(pageURL)
	c.tracker.RecordFetchTime(time.Since(start))

	if err != nil {
		c.tracker.IncrementPagesFailed()
		c.tracker.IncrementSkipped()
		logrus.Warnf("Skipped %s: %v", pageURL, err)
		return
	}

	c.tracker.IncrementPagesFetched()
	c.graph.UpsertNode(Canonicalize(pageURL))
	logrus.Infof("Fetched %s (%d bytes)", pageURL, len(body))

	title, sections := extract.ExtractContent(body, pageURL)
	c.recordContent(pageURL, title, sections)

	c.discoverLinks(pageURL, body, maxURLs)
}

// recordContent appends a record unless the page has neither title nor text
func (c *Crawler) recordContent(pageURL, title string, sections []storage.Section) {
	empty := storage.AllEmpty(sections)
	if empty {
		c.tracker.IncrementEmptyContent()
	}

	if title == "" && empty {
		c.tracker.IncrementSkipped()
		logrus.Infof("Skipped %s: no title or content", pageURL)
		return
	}

	if title == "" {
		title = storage.UntitledPage
	}

	c.nextID++
	c.records = append(c.records, storage.ContentRecord{
		ID:       strconv.Itoa(c.nextID),
		Title:    title,
		URL:      pageURL,
		Sections: sections,
	})
	c.tracker.IncrementProcessed()
	logrus.Debugf("Recorded %s as #%d with %d sections", pageURL, c.nextID, len(sections))
}

// discoverLinks records graph edges and enqueues unseen same-domain links.
// Nothing is enqueued once the visit bound is reached.
func (c *Crawler) discoverLinks(pageURL string, body []byte, maxURLs int) {
	links, err := ExtractLinks(body, pageURL)
	if err != nil {
		logrus.Warnf("Link discovery failed for %s: %v", pageURL, err)
		return
	}
	c.tracker.AddLinksDiscovered(len(links))

	from := Canonicalize(pageURL)
	for _, link := range links {
		if err := c.graph.UpsertEdge(from, Canonicalize(link)); err != nil {
			logrus.Debugf("Failed to record link %s -> %s: %v", from, link, err)
		}
	}

	if c.frontier.Visited() >= maxURLs {
		logrus.Debugf("Found %d links on %s, visit bound reached so none queued", len(links), pageURL)
		return
	}

	queued, seen := 0, 0
	for _, link := range links {
		if c.frontier.IsVisited(link) {
			seen++
			continue
		}
		if c.frontier.Enqueue(link) {
			queued++
		}
	}
	logrus.Infof("Found %d links on %s, %d newly queued, %d already visited", len(links), pageURL, queued, seen)
}

func validateSeed(seedURL string) error {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidSeed, seedURL)
	}
	return nil
}
