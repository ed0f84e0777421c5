package shortestpath

import (
	"strconv"

	"github.com/brandonshearin/distvec/bspgraph"
	"github.com/brandonshearin/distvec/distvec"
	"golang.org/x/xerrors"
)

// EdgeBatchMessage carries the edge snapshot an agent broadcasts to one of
// its neighbors.
type EdgeBatchMessage struct {
	// The ID of the node that broadcast the batch.
	From distvec.NodeID

	// The edges known to From at broadcast time.
	Edges []distvec.Edge
}

// Type implements message.Message.
func (m EdgeBatchMessage) Type() string { return "edges" }

func vertexID(id distvec.NodeID) string { return strconv.FormatInt(int64(id), 10) }

// graphChannel implements distvec.BroadcastChannel on top of the graph's
// message queues. Batches become visible to the recipients in the next
// superstep.
type graphChannel struct {
	g *bspgraph.Graph
}

func (ch graphChannel) Broadcast(from distvec.NodeID, to []distvec.NodeID, edges []distvec.Edge) error {
	for _, id := range to {
		if ch.g.Vertex(vertexID(id)) == nil {
			return xerrors.Errorf("broadcast from %d to %d: %w", from, id, distvec.ErrUnknownPeer)
		}
	}
	for _, id := range to {
		msg := EdgeBatchMessage{
			From:  from,
			Edges: append([]distvec.Edge(nil), edges...),
		}
		if err := ch.g.SendMessage(vertexID(id), msg); err != nil {
			return err
		}
	}
	return nil
}
