package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	_, ok = g.nodes["b"]
	assert.True(t, ok)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Equal(t, 1, nodeA.dependents["b"])
		assert.Equal(t, 1, nodeB.deps["a"])

		require.NoError(t, g.AddEdge("a", "b")) // second call between the same pair
		assert.Equal(t, 2, nodeA.dependents["b"])
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	g.AddNode("src")
	g.AddNode("view")
	require.NoError(t, g.AddEdge("src", "view"))
	require.NoError(t, g.AddEdge("src", "view"))

	require.NoError(t, g.RemoveEdge("src", "view"))
	deps, err := g.Dependencies("view")
	require.NoError(t, err)
	assert.Equal(t, []string{"src"}, deps, "one edge is still left")

	require.NoError(t, g.RemoveEdge("src", "view"))
	deps, err = g.Dependencies("view")
	require.NoError(t, err)
	assert.Empty(t, deps)

	assert.ErrorContains(t, g.RemoveEdge("src", "view"), "edge not found")
}

func TestRemoveNode(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	g.RemoveNode("b")

	_, err := g.Dependencies("b")
	assert.ErrorContains(t, err, "node not found")
	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Empty(t, dependents)
	deps, err := g.Dependencies("c")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestWouldCycle(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	assert.True(t, g.WouldCycle("c", "a"))
	assert.True(t, g.WouldCycle("a", "a"))
	assert.False(t, g.WouldCycle("a", "c"))
}

func TestTopologicalSort(t *testing.T) {
	t.Run("producers come first", func(t *testing.T) {
		g := New()
		for _, id := range []string{"view", "gpu", "src", "extra"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("src", "gpu"))
		require.NoError(t, g.AddEdge("extra", "gpu"))
		require.NoError(t, g.AddEdge("gpu", "view"))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"extra", "src", "gpu", "view"}, order)
	})

	t.Run("cycle is reported", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopologicalSort()
		assert.ErrorContains(t, err, "cycle detected")
	})
}
