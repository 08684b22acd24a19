package memory

import (
	"testing"

	"github.com/alvmarrod/content-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkGraph_UpsertEdge(t *testing.T) {
	g := NewLinkGraph()

	require.NoError(t, g.UpsertEdge("https://a.org/", "https://a.org/x"))
	require.NoError(t, g.UpsertEdge("https://a.org/", "https://a.org/y"))
	require.NoError(t, g.UpsertEdge("https://a.org/", "https://a.org/x"))
	require.NoError(t, g.UpsertEdge("https://a.org/x", "https://a.org/"))

	nodes, edges := g.GetStats()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 3, edges)

	assert.Equal(t, []storage.Link{
		{From: "https://a.org/", To: "https://a.org/x", Weight: 2},
		{From: "https://a.org/", To: "https://a.org/y", Weight: 1},
		{From: "https://a.org/x", To: "https://a.org/", Weight: 1},
	}, g.Links())
}

func TestLinkGraph_UpsertNodeIsStable(t *testing.T) {
	g := NewLinkGraph()

	first := g.UpsertNode("https://a.org/")
	assert.Equal(t, first, g.UpsertNode("https://a.org/"))
	assert.NotEqual(t, first, g.UpsertNode("https://a.org/other"))
}

func TestLinkGraph_RejectsEmptyEndpoint(t *testing.T) {
	g := NewLinkGraph()

	assert.Error(t, g.UpsertEdge("", "https://a.org/"))
	assert.Empty(t, g.Links())
}
