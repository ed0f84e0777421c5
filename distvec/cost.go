package distvec

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/brandonshearin/distvec/topology"
	"golang.org/x/xerrors"
)

// DefaultMaxCost is the upper bound (inclusive) for randomly assigned link
// costs.
const DefaultMaxCost Cost = 20

// Cost is the weight of a link or the accumulated weight of a path.
type Cost int64

// Infinity marks a pair of nodes with no known connection. No sum of finite
// costs ever reaches it because Add saturates.
const Infinity Cost = math.MaxInt64

// IsFinite returns true if c is a real cost.
func (c Cost) IsFinite() bool { return c != Infinity }

// Add returns c+d, or Infinity if either operand is Infinity or the sum
// would not fit.
func (c Cost) Add(d Cost) Cost {
	if !c.IsFinite() || !d.IsFinite() || c > Infinity-d {
		return Infinity
	}
	return c + d
}

func (c Cost) String() string {
	if !c.IsFinite() {
		return "inf"
	}
	return strconv.FormatInt(int64(c), 10)
}

// CostMatrix holds the cost of every direct link in the network. It is
// filled once by a CostAssigner and is read-only afterwards, which makes it
// safe to share between all agents of a simulation without locking.
type CostMatrix struct {
	size  int
	costs []Cost
}

func newCostMatrix(size int) *CostMatrix {
	m := &CostMatrix{
		size:  size,
		costs: make([]Cost, size*size),
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			m.costs[i*size+j] = Infinity
		}
	}
	return m
}

// Size returns the number of nodes covered by the matrix.
func (m *CostMatrix) Size() int { return m.size }

// CostBetween returns the cost of the link between i and j, zero if i == j
// and Infinity if the two nodes are not adjacent or unknown to the matrix.
func (m *CostMatrix) CostBetween(i, j NodeID) Cost {
	if !m.contains(i) || !m.contains(j) {
		return Infinity
	}
	return m.costs[int(i)*m.size+int(j)]
}

// Adjacent returns true if i and j are different nodes joined by a link.
func (m *CostMatrix) Adjacent(i, j NodeID) bool {
	return i != j && m.CostBetween(i, j).IsFinite()
}

func (m *CostMatrix) contains(id NodeID) bool {
	return id >= 0 && int64(id) < int64(m.size)
}

func (m *CostMatrix) set(i, j NodeID, c Cost) {
	m.costs[int(i)*m.size+int(j)] = c
}

// Dump writes the matrix as a fixed-width grid. Pairs without a link are
// printed as X.
func (m *CostMatrix) Dump(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("\n      ")
	for j := 0; j < m.size; j++ {
		ew.printf("(%3d) ", j)
	}
	for i := 0; i < m.size; i++ {
		ew.printf("\n(%3d) ", i)
		for j := 0; j < m.size; j++ {
			if c := m.costs[i*m.size+j]; c.IsFinite() {
				ew.printf("%5d ", int64(c))
			} else {
				ew.printf("    X ")
			}
		}
		ew.printf("\n")
	}
	return ew.err
}

// errWriter latches the first write error so Dump does not have to check
// every Fprintf.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// CostAssigner draws a random cost for every link of a topology.
type CostAssigner struct {
	// MaxCost is the inclusive upper bound for drawn costs. Values < 1
	// fall back to DefaultMaxCost.
	MaxCost Cost

	rng *rand.Rand
}

// NewCostAssigner returns an assigner whose draws are fully determined by
// seed.
func NewCostAssigner(seed int64) *CostAssigner {
	return &CostAssigner{
		MaxCost: DefaultMaxCost,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Assign builds the cost matrix for topo. Every undirected link gets exactly
// one cost in [1, MaxCost], written to both (i, j) and (j, i) the first time
// the link is seen. A malformed topology is rejected before anything is
// drawn; the returned error then wraps topology.ErrMalformed.
func (a *CostAssigner) Assign(topo topology.Topology) (*CostMatrix, error) {
	if err := topology.Validate(topo); err != nil {
		return nil, xerrors.Errorf("assign costs: %w", err)
	}

	maxCost := a.MaxCost
	if maxCost < 1 {
		maxCost = DefaultMaxCost
	}

	m := newCostMatrix(topo.NodeCount())
	for i := 0; i < topo.NodeCount(); i++ {
		id := topo.IDOf(i)
		for _, peer := range topo.NeighborsOf(id) {
			if m.CostBetween(id, peer).IsFinite() {
				continue
			}
			c := Cost(a.rng.Int63n(int64(maxCost))) + 1
			m.set(id, peer, c)
			m.set(peer, id, c)
		}
	}
	return m, nil
}

// NewCostMatrix builds a matrix from explicit link costs. It is meant for
// tests and for replaying known networks; costs must be positive.
func NewCostMatrix(size int, links map[[2]NodeID]Cost) (*CostMatrix, error) {
	m := newCostMatrix(size)
	for pair, c := range links {
		if !m.contains(pair[0]) || !m.contains(pair[1]) || pair[0] == pair[1] {
			return nil, xerrors.Errorf("link %d-%d: %w", pair[0], pair[1], topology.ErrMalformed)
		}
		if c < 1 || !c.IsFinite() {
			return nil, xerrors.Errorf("link %d-%d has invalid cost %v: %w", pair[0], pair[1], c, topology.ErrMalformed)
		}
		m.set(pair[0], pair[1], c)
		m.set(pair[1], pair[0], c)
	}
	return m, nil
}
