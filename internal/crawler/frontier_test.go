package crawler

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.org/a#section", "https://example.org/a"},
		{"https://example.org/a?q=1#x", "https://example.org/a?q=1"},
		{"https://example.org/a", "https://example.org/a"},
		{"https://example.org/#", "https://example.org/"},
		{"http://[::1%zz/#frag", "http://[::1%zz/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestFrontier_FIFO(t *testing.T) {
	f := NewFrontier()
	assert.True(t, f.Enqueue("https://example.org/1"))
	assert.True(t, f.Enqueue("https://example.org/2"))
	assert.True(t, f.Enqueue("https://example.org/3"))

	for _, want := range []string{"https://example.org/1", "https://example.org/2", "https://example.org/3"} {
		got, ok := f.Dequeue()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := f.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, f.Size())
}

func TestFrontier_DedupByCanonicalURL(t *testing.T) {
	f := NewFrontier()

	assert.True(t, f.Enqueue("https://example.org/a#one"))
	assert.False(t, f.Enqueue("https://example.org/a#two"), "fragment variant is the same page")
	assert.False(t, f.Enqueue("https://example.org/a"))
	assert.Equal(t, []string{"https://example.org/a#one"}, f.Pending())

	got, _ := f.Dequeue()
	assert.Equal(t, "https://example.org/a#one", got, "the original form is kept for fetching")
	assert.True(t, f.MarkVisited(got))

	assert.False(t, f.Enqueue("https://example.org/a"), "visited pages are never queued again")
	assert.True(t, f.IsVisited("https://example.org/a#other"))
	assert.Equal(t, 0, f.Size())
}

func TestFrontier_RequeueAfterDequeueBeforeVisit(t *testing.T) {
	f := NewFrontier()
	f.Enqueue("https://example.org/a")
	f.Dequeue()

	// Dequeued but not yet marked: the queue no longer holds it
	assert.True(t, f.Enqueue("https://example.org/a"))
}

func TestFrontier_MarkVisited(t *testing.T) {
	f := NewFrontier()

	assert.True(t, f.MarkVisited("https://example.org/a"))
	assert.False(t, f.MarkVisited("https://example.org/a#x"))
	assert.True(t, f.MarkVisited("https://example.org/b"))
	assert.Equal(t, 2, f.Visited())
}

func TestFrontier_MarkVisitedIsAtomic(t *testing.T) {
	f := NewFrontier()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.MarkVisited("https://example.org/race") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, f.Visited())
}
