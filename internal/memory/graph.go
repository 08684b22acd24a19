package memory

import (
	"fmt"
	"sync"

	"github.com/alvmarrod/content-weaver/internal/storage"
)

type edgeKey struct {
	from, to int
}

// LinkGraph holds the page link graph of one crawl run in memory
type LinkGraph struct {
	nodes       map[string]int // canonical URL -> node ID
	urlsByID    map[int]string // node ID -> canonical URL
	edges       map[edgeKey]int
	edgeOrder   []edgeKey // first-seen order, keeps Links deterministic
	nodeCounter int
	mu          sync.RWMutex
}

// NewLinkGraph creates an empty in-memory graph
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		nodes:    make(map[string]int),
		urlsByID: make(map[int]string),
		edges:    make(map[edgeKey]int),
	}
}

// UpsertNode registers a page URL and returns its node ID
func (g *LinkGraph) UpsertNode(pageURL string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.upsertNodeLocked(pageURL)
}

func (g *LinkGraph) upsertNodeLocked(pageURL string) int {
	if id, exists := g.nodes[pageURL]; exists {
		return id
	}

	g.nodeCounter++
	g.nodes[pageURL] = g.nodeCounter
	g.urlsByID[g.nodeCounter] = pageURL
	return g.nodeCounter
}

// UpsertEdge records a link from one page to another, incrementing its
// weight if it already exists. Both pages are registered if needed.
func (g *LinkGraph) UpsertEdge(fromURL, toURL string) error {
	if fromURL == "" || toURL == "" {
		return fmt.Errorf("edge %q -> %q has an empty endpoint", fromURL, toURL)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := edgeKey{
		from: g.upsertNodeLocked(fromURL),
		to:   g.upsertNodeLocked(toURL),
	}
	if _, exists := g.edges[key]; !exists {
		g.edgeOrder = append(g.edgeOrder, key)
	}
	g.edges[key]++
	return nil
}

// GetStats returns current graph statistics
func (g *LinkGraph) GetStats() (nodeCount, edgeCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes), len(g.edges)
}

// Links returns every edge with its weight, in first-seen order
func (g *LinkGraph) Links() []storage.Link {
	g.mu.RLock()
	defer g.mu.RUnlock()

	links := make([]storage.Link, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		links = append(links, storage.Link{
			From:   g.urlsByID[key.from],
			To:     g.urlsByID[key.to],
			Weight: g.edges[key],
		})
	}
	return links
}
