package distvec

import (
	"log/slog"

	"github.com/brandonshearin/distvec/internal/logging"
	"github.com/brandonshearin/distvec/topology"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// Network is a sequential round scheduler. Each call to Step runs one
// round: every agent steps once, in ascending ID order, and the batches
// broadcast during the round are delivered once all agents are done.
type Network struct {
	agents  []*Agent
	byID    map[NodeID]*Agent
	channel *LocalChannel
	log     *slog.Logger
	round   int
}

// NewNetwork creates one agent per node of topo. Passing a nil logger
// disables logging.
func NewNetwork(topo topology.Topology, costs *CostMatrix, logger *slog.Logger) (*Network, error) {
	if err := topology.Validate(topo); err != nil {
		return nil, xerrors.Errorf("create network: %w", err)
	}
	if costs == nil || costs.Size() != topo.NodeCount() {
		return nil, xerrors.Errorf("create network: cost matrix does not cover %d nodes: %w", topo.NodeCount(), topology.ErrMalformed)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	n := &Network{
		byID:    make(map[NodeID]*Agent, topo.NodeCount()),
		channel: NewLocalChannel(),
		log:     logger,
	}
	for i := 0; i < topo.NodeCount(); i++ {
		id := topo.IDOf(i)
		a, err := NewAgent(AgentConfig{
			ID:        id,
			Neighbors: topo.NeighborsOf(id),
			Costs:     costs,
			Channel:   n.channel,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		n.agents = append(n.agents, a)
		n.byID[id] = a
		n.channel.Register(a)
	}
	slices.SortFunc(n.agents, func(x, y *Agent) int { return int(x.ID() - y.ID()) })
	return n, nil
}

// Step runs a single round.
func (n *Network) Step() error {
	n.round++
	for _, a := range n.agents {
		if err := a.Step(n.round); err != nil {
			return xerrors.Errorf("round %d: %w", n.round, err)
		}
	}
	delivered := n.channel.Flush()

	relaxed := 0
	for _, a := range n.agents {
		relaxed += a.Relaxations()
	}
	n.log.Debug("round complete", "round", n.round, "edges_delivered", delivered, "relaxations", relaxed)
	return nil
}

// Run executes the given number of rounds.
func (n *Network) Run(rounds int) error {
	for i := 0; i < rounds; i++ {
		if err := n.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Round returns the number of rounds executed so far.
func (n *Network) Round() int { return n.round }

// Agent returns the agent running on node id.
func (n *Network) Agent(id NodeID) (*Agent, bool) {
	a, ok := n.byID[id]
	return a, ok
}

// Agents returns all agents ordered by ID.
func (n *Network) Agents() []*Agent { return append([]*Agent(nil), n.agents...) }
