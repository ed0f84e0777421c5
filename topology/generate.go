package topology

import (
	"math/rand"

	"golang.org/x/xerrors"
)

// Ring returns n nodes where node i is linked to i-1 and i+1 (mod n).
func Ring(n int) *Graph {
	g := NewGraphWithNodes(n)
	if n < 2 {
		return g
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		if next == i {
			continue
		}
		_ = g.AddLink(NodeID(i), NodeID(next))
	}
	return g
}

// FullMesh returns n nodes that are all directly linked to each other.
func FullMesh(n int) *Graph {
	g := NewGraphWithNodes(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			_ = g.AddLink(NodeID(i), NodeID(j))
		}
	}
	return g
}

// KOut wires every node to k distinct, randomly chosen peers. Links are
// added in both directions so a node usually ends up with more than k
// neighbors. The same seed always yields the same graph.
func KOut(n, k int, seed int64) (*Graph, error) {
	if k < 0 || (n > 0 && k > n-1) {
		return nil, xerrors.Errorf("k-out wiring with k=%d needs at least %d nodes, got %d: %w", k, k+1, n, ErrMalformed)
	}

	rng := rand.New(rand.NewSource(seed))
	g := NewGraphWithNodes(n)
	for i := 0; i < n; i++ {
		picked := 0
		for _, j := range rng.Perm(n) {
			if picked == k {
				break
			}
			if j == i {
				continue
			}
			_ = g.AddLink(NodeID(i), NodeID(j))
			picked++
		}
	}
	return g, nil
}
