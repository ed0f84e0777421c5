package topology

import "golang.org/x/xerrors"

var (
	// ErrMalformed is returned when a topology cannot be used to run a
	// simulation: node IDs outside the dense [0, N) range, duplicate IDs,
	// self links or neighbors that are not part of the network.
	ErrMalformed = xerrors.New("malformed topology")

	// ErrUnknownNode is returned by Graph when a link references a node
	// that has not been added yet.
	ErrUnknownNode = xerrors.New("unknown node")
)

// NodeID identifies a node of the network. The IDs of an N node topology
// are expected to be dense, i.e. every ID lies in [0, N).
type NodeID int64

/*Topology is implemented by membership services that know which nodes
make up the network and who is directly connected to whom.  This is all the
routing core ever needs to know about the network.*/
type Topology interface {
	// NodeCount returns the number of nodes in the network.
	NodeCount() int

	// IDOf returns the ID of the node stored at the given index.
	IDOf(index int) NodeID

	// NeighborsOf returns the direct neighbors of a node in a stable order.
	NeighborsOf(id NodeID) []NodeID
}
