package topology

import (
	"sync"

	"golang.org/x/xerrors"
)

// Graph is an in-memory adjacency store that implements Topology. It is
// safe for concurrent use.
type Graph struct {
	mu sync.RWMutex

	nodes []NodeID
	index map[NodeID]int
	adj   map[NodeID][]NodeID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[NodeID]int),
		adj:   make(map[NodeID][]NodeID),
	}
}

// NewGraphWithNodes returns a graph that contains the nodes 0..n-1 and no
// links.
func NewGraphWithNodes(n int) *Graph {
	g := NewGraph()
	for i := 0; i < n; i++ {
		g.AddNode(NodeID(i))
	}
	return g
}

// AddNode inserts a node into the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(id NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.index[id]; exists {
		return
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
}

// AddLink connects a and b in both directions.
func (g *Graph) AddLink(a, b NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.ensureKnown(a, b); err != nil {
		return err
	}
	g.addArc(a, b)
	g.addArc(b, a)
	return nil
}

// AddArc records b as a neighbor of a without touching b's neighbor list.
// Topologies are undirected semantically, but membership services are
// free to list a link on one side only.
func (g *Graph) AddArc(a, b NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.ensureKnown(a, b); err != nil {
		return err
	}
	g.addArc(a, b)
	return nil
}

func (g *Graph) ensureKnown(ids ...NodeID) error {
	for _, id := range ids {
		if _, ok := g.index[id]; !ok {
			return xerrors.Errorf("node %d: %w", id, ErrUnknownNode)
		}
	}
	return nil
}

// addArc appends b to the neighbor list of a unless it is already there.
func (g *Graph) addArc(a, b NodeID) {
	for _, n := range g.adj[a] {
		if n == b {
			return
		}
	}
	g.adj[a] = append(g.adj[a], b)
}

// NodeCount implements Topology.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// IDOf implements Topology. It panics if index is out of range, just like
// indexing a slice would.
func (g *Graph) IDOf(index int) NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[index]
}

// NeighborsOf implements Topology. The returned slice is a copy and can be
// modified by the caller.
func (g *Graph) NeighborsOf(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	list := g.adj[id]
	out := make([]NodeID, len(list))
	copy(out, list)
	return out
}

// Degree returns the number of neighbors listed for id.
func (g *Graph) Degree(id NodeID) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.adj[id])
}

// Nodes returns the IDs of all nodes in insertion order.
func (g *Graph) Nodes() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]NodeID, len(g.nodes))
	copy(out, g.nodes)
	return out
}
