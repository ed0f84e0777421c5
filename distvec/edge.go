package distvec

import (
	"fmt"

	"github.com/brandonshearin/distvec/topology"
)

// NodeID identifies a node. It is an alias so values flow freely between
// this package and topology.
type NodeID = topology.NodeID

// EdgeKey is the identity of an Edge. Two edges with the same key describe
// the same directed link, whatever their cost.
type EdgeKey struct {
	Source      NodeID
	Destination NodeID
}

// Edge is a directed observation of a link. An undirected link shows up as
// two edges, one per direction.
type Edge struct {
	Source      NodeID
	Destination NodeID
	Cost        Cost
}

// Key returns the identity of e.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Destination: e.Destination}
}

// Equal reports whether e and o describe the same link. Cost is ignored.
func (e Edge) Equal(o Edge) bool { return e.Key() == o.Key() }

func (e Edge) String() string {
	return fmt.Sprintf("[%d, %d, %v]", e.Source, e.Destination, e.Cost)
}

// Less orders edges by source and then destination.
func (k EdgeKey) Less(o EdgeKey) bool {
	if k.Source != o.Source {
		return k.Source < o.Source
	}
	return k.Destination < o.Destination
}

// Path is the best route currently known from an agent to Destination.
// Predecessor is the first hop on that route, i.e. the neighbor the agent
// hands traffic to. Cost is the total weight of the route.
type Path struct {
	Destination NodeID `diff:"destination"`
	Predecessor NodeID `diff:"predecessor"`
	Cost        Cost   `diff:"cost"`
}

// Equal reports whether p and o lead to the same destination.
func (p Path) Equal(o Path) bool { return p.Destination == o.Destination }

func (p Path) String() string {
	return fmt.Sprintf("[%d->%d, %v]", p.Destination, p.Predecessor, p.Cost)
}
