package distvec

import (
	"golang.org/x/xerrors"
)

// ErrUnknownPeer is returned by LocalChannel when a broadcast targets a
// node that has no registered agent.
var ErrUnknownPeer = xerrors.New("no agent registered for peer")

//go:generate mockgen -package mocks -destination mocks/mock_channel.go github.com/brandonshearin/distvec/distvec BroadcastChannel

// BroadcastChannel is implemented by transports that fan an agent's edge
// snapshot out to its direct neighbors. Every recipient must receive its
// own copy of edges; implementations must not hand out the slice they were
// given.
type BroadcastChannel interface {
	Broadcast(from NodeID, to []NodeID, edges []Edge) error
}

// cloneEdges returns an independent copy of edges.
func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

type delivery struct {
	to    *Agent
	edges []Edge
}

// LocalChannel connects agents living in the same process. Broadcast only
// queues the batches; Flush hands them to the recipients. Calling Flush
// once all agents have stepped guarantees that no agent sees edges sent in
// the current round before the round is over, no matter in which order the
// agents were stepped.
type LocalChannel struct {
	agents  map[NodeID]*Agent
	pending []delivery
}

// NewLocalChannel returns a channel with no registered agents.
func NewLocalChannel() *LocalChannel {
	return &LocalChannel{agents: make(map[NodeID]*Agent)}
}

// Register makes a reachable as a broadcast recipient.
func (ch *LocalChannel) Register(a *Agent) {
	ch.agents[a.ID()] = a
}

// Broadcast implements BroadcastChannel. Either every recipient is known
// and gets a batch queued, or nothing is queued at all.
func (ch *LocalChannel) Broadcast(from NodeID, to []NodeID, edges []Edge) error {
	batch := make([]delivery, 0, len(to))
	for _, id := range to {
		peer, ok := ch.agents[id]
		if !ok {
			return xerrors.Errorf("broadcast from %d to %d: %w", from, id, ErrUnknownPeer)
		}
		batch = append(batch, delivery{to: peer, edges: cloneEdges(edges)})
	}
	ch.pending = append(ch.pending, batch...)
	return nil
}

// Pending returns the number of batches waiting for Flush.
func (ch *LocalChannel) Pending() int { return len(ch.pending) }

// Flush delivers all queued batches and returns the number of edges that
// were new to their recipients.
func (ch *LocalChannel) Flush() int {
	added := 0
	for _, d := range ch.pending {
		added += d.to.Receive(d.edges)
	}
	ch.pending = ch.pending[:0]
	return added
}
