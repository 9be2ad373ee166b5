package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]int),
		dependents: make(map[string]int),
	}
}

// RemoveNode deletes a node together with all of its edges.
func (g *Graph) RemoveNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for depID := range n.deps {
		delete(g.nodes[depID].dependents, id)
	}
	for depID := range n.dependents {
		delete(g.nodes[depID].deps, id)
	}
	delete(g.nodes, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. Edges are
// counted, so two calls between the same pair of modules need two
// RemoveEdge calls. An error is returned if either node does not exist or
// if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID]++
	fromNode.dependents[toID]++

	return nil
}

// RemoveEdge drops one edge from `fromID` to `toID`.
func (g *Graph) RemoveEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, okFrom := g.nodes[fromID]
	toNode, okTo := g.nodes[toID]
	if !okFrom || !okTo || fromNode.dependents[toID] == 0 {
		return fmt.Errorf("edge not found: %s -> %s", fromID, toID)
	}

	decrement(fromNode.dependents, toID)
	decrement(toNode.deps, fromID)
	return nil
}

func decrement(m map[string]int, key string) {
	m[key]--
	if m[key] <= 0 {
		delete(m, key)
	}
}

// Dependencies returns the sorted IDs of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// WouldCycle reports whether adding an edge from `fromID` to `toID` would
// close a cycle, that is whether `fromID` is already reachable from `toID`.
func (g *Graph) WouldCycle(fromID, toID string) bool {
	if fromID == toID {
		return true
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	visited := make(map[string]bool)
	stack := []string{toID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == fromID {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		if n, ok := g.nodes[id]; ok {
			for next := range n.dependents {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// TopologicalSort returns every node ordered so that producers precede
// their consumers. Ties are broken by ID, so the order is stable across
// runs.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	inDegree := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		inDegree[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var freed []string
		for next := range g.nodes[id].dependents {
			inDegree[next]--
			if inDegree[next] == 0 {
				freed = append(freed, next)
			}
		}
		slices.Sort(freed)
		ready = append(ready, freed...)
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected: %d of %d nodes could not be ordered", len(g.nodes)-len(order), len(g.nodes))
	}
	return order, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
