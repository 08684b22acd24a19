package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// Frontier implements a FIFO crawl queue with deduplication by canonical URL.
// It is safe for concurrent use, though the Crawler drives it from one goroutine.
type Frontier struct {
	mu      sync.Mutex
	items   []string
	queued  map[string]bool // canonical URLs currently in items
	visited map[string]bool // canonical URLs already dequeued for processing
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		items:   make([]string, 0),
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// Canonicalize strips the fragment from a URL. Values that do not parse
// are cut at the first '#'.
func Canonicalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '#'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// Enqueue appends the URL to the tail unless its canonical form was already
// visited or is already waiting. Returns true if added.
func (f *Frontier) Enqueue(rawURL string) bool {
	key := Canonicalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[key] || f.queued[key] {
		return false
	}

	f.queued[key] = true
	f.items = append(f.items, rawURL)
	return true
}

// Dequeue removes and returns the head of the queue.
// Returns ("", false) when the queue is empty.
func (f *Frontier) Dequeue() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return "", false
	}

	rawURL := f.items[0]
	f.items = f.items[1:]
	delete(f.queued, Canonicalize(rawURL))
	return rawURL, true
}

// MarkVisited records the URL's canonical form as visited. The check and the
// insert happen under one lock; returns false if it was already visited.
func (f *Frontier) MarkVisited(rawURL string) bool {
	key := Canonicalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[key] {
		return false
	}
	f.visited[key] = true
	return true
}

// IsVisited reports whether the URL's canonical form was already visited
func (f *Frontier) IsVisited(rawURL string) bool {
	key := Canonicalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited[key]
}

// Visited returns the size of the visited set
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Size returns the number of URLs waiting in the queue
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Pending returns a snapshot of the queued URLs in dequeue order
func (f *Frontier) Pending() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := make([]string, len(f.items))
	copy(pending, f.items)
	return pending
}
