package distvec

import (
	"log/slog"

	"github.com/brandonshearin/distvec/internal/logging"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

var (
	// ErrMissingCost is returned by Step when the cost matrix has no finite
	// cost for the link between an agent and one of its neighbors.
	ErrMissingCost = xerrors.New("no cost known for neighbor link")

	// ErrInvalidAgentConfig is wrapped by every AgentConfig validation error.
	ErrInvalidAgentConfig = xerrors.New("invalid agent configuration")
)

// Phase is the protocol phase an agent executes on its next Step.
type Phase uint8

const (
	// PhaseInit discovers the links to the direct neighbors.
	PhaseInit Phase = iota + 1
	// PhaseBroadcast sends the locally known edges to every neighbor.
	PhaseBroadcast
	// PhaseCompute relaxes paths over the known edges. Agents stay in
	// this phase for the rest of the run.
	PhaseCompute
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseBroadcast:
		return "BROADCAST"
	case PhaseCompute:
		return "COMPUTE"
	default:
		return "UNKNOWN"
	}
}

// AgentConfig encapsulates the settings for creating a new Agent.
type AgentConfig struct {
	// ID of the node the agent runs on.
	ID NodeID

	// Neighbors lists the direct neighbors of the node.
	Neighbors []NodeID

	// Costs is the shared, read-only matrix of link costs.
	Costs *CostMatrix

	// Channel delivers the agent's edges to its neighbors.
	Channel BroadcastChannel

	// Logger receives phase transitions at debug level. Optional.
	Logger *slog.Logger
}

func (cfg *AgentConfig) validate() error {
	var err error
	if cfg.Costs == nil {
		err = multierror.Append(err, xerrors.Errorf("cost matrix not specified: %w", ErrInvalidAgentConfig))
	}
	if cfg.Channel == nil {
		err = multierror.Append(err, xerrors.Errorf("broadcast channel not specified: %w", ErrInvalidAgentConfig))
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return err
}

// Agent runs the distance-vector protocol for a single node. It knows its
// neighbors, the graph fragment it has learned so far and the best paths
// computed from that fragment.
//
// Agents are not safe for concurrent use. The scheduler that calls Step
// and the channel that calls Receive must never do so at the same time.
type Agent struct {
	id        NodeID
	neighbors []NodeID
	costs     *CostMatrix
	channel   BroadcastChannel
	log       *slog.Logger

	phase Phase

	// edges is the local graph fragment, deduplicated by EdgeKey.
	edges map[EdgeKey]Edge
	// adj caches edges grouped by source in sorted order. It is
	// rebuilt lazily after the edge set changes.
	adj map[NodeID][]Edge

	paths       map[NodeID]*Path
	relaxations int
}

// NewAgent returns an agent in PhaseInit.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("agent %d: %w", cfg.ID, err)
	}

	a := &Agent{
		id:        cfg.ID,
		neighbors: uniqueIDs(cfg.Neighbors),
		costs:     cfg.Costs,
		channel:   cfg.Channel,
		log:       cfg.Logger.With("node", cfg.ID),
		phase:     PhaseInit,
	}
	a.reset()
	return a, nil
}

func uniqueIDs(ids []NodeID) []NodeID {
	seen := make(map[NodeID]struct{}, len(ids))
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (a *Agent) reset() {
	a.edges = make(map[EdgeKey]Edge)
	a.adj = nil
	a.paths = make(map[NodeID]*Path)
	a.relaxations = 0
}

// ID returns the node the agent runs on.
func (a *Agent) ID() NodeID { return a.id }

// Neighbors returns a copy of the agent's neighbor list.
func (a *Agent) Neighbors() []NodeID { return append([]NodeID(nil), a.neighbors...) }

// Phase returns the phase the next Step will execute.
func (a *Agent) Phase() Phase { return a.phase }

// Relaxations returns the number of paths inserted or improved by the most
// recent COMPUTE step.
func (a *Agent) Relaxations() int { return a.relaxations }

// Step executes one protocol phase. INIT and BROADCAST run exactly once, on
// the first two calls; every later call runs COMPUTE. The round number is
// only used for logging.
func (a *Agent) Step(round int) error {
	switch a.phase {
	case PhaseInit:
		if err := a.init(); err != nil {
			return err
		}
		a.phase = PhaseBroadcast
	case PhaseBroadcast:
		if err := a.broadcast(); err != nil {
			return err
		}
		a.phase = PhaseCompute
	case PhaseCompute:
		a.compute()
		a.log.Debug("paths computed", "round", round, "edges", len(a.edges), "paths", len(a.paths), "relaxed", a.relaxations)
		return nil
	}

	a.log.Debug("phase transition", "round", round, "next", a.phase)
	return nil
}

// init learns the links to the direct neighbors.
func (a *Agent) init() error {
	a.reset()
	for _, peer := range a.neighbors {
		c := a.costs.CostBetween(a.id, peer)
		if !c.IsFinite() {
			return xerrors.Errorf("agent %d: link to %d: %w", a.id, peer, ErrMissingCost)
		}
		a.insert(Edge{Source: a.id, Destination: peer, Cost: c})
	}
	return nil
}

// broadcast hands a snapshot of the local edge set to every neighbor.
func (a *Agent) broadcast() error {
	if len(a.neighbors) == 0 {
		return nil
	}
	if err := a.channel.Broadcast(a.id, a.Neighbors(), a.Edges()); err != nil {
		return xerrors.Errorf("agent %d: broadcast: %w", a.id, err)
	}
	return nil
}

// compute runs Bellman-Ford over the local edge set. Each pass relaxes the
// edges leaving every path of a snapshot taken at the start of the pass.
// At most |E|-1 passes are made; a pass that changes nothing ends the loop
// early since later passes would see the very same snapshot.
func (a *Agent) compute() {
	a.paths[a.id] = &Path{Destination: a.id, Predecessor: a.id, Cost: 0}
	a.relaxations = 0

	adj := a.adjacency()
	for pass := 0; pass < len(a.edges)-1; pass++ {
		changed := 0
		for _, p := range a.snapshot() {
			for _, e := range adj[p.Destination] {
				nextHop := p.Predecessor
				if e.Source == a.id {
					nextHop = e.Destination
				}
				cost := p.Cost.Add(e.Cost)

				cur, known := a.paths[e.Destination]
				if !known {
					a.paths[e.Destination] = &Path{Destination: e.Destination, Predecessor: nextHop, Cost: cost}
					changed++
				} else if cost < cur.Cost {
					cur.Cost = cost
					cur.Predecessor = nextHop
					changed++
				}
			}
		}
		a.relaxations += changed
		if changed == 0 {
			break
		}
	}
}

// snapshot returns copies of the current paths ordered by destination.
func (a *Agent) snapshot() []Path {
	keys := maps.Keys(a.paths)
	slices.Sort(keys)
	out := make([]Path, len(keys))
	for i, k := range keys {
		out[i] = *a.paths[k]
	}
	return out
}

// adjacency groups the edge set by source. Edges are sorted so that the
// outcome of compute does not depend on the order edges arrived in.
func (a *Agent) adjacency() map[NodeID][]Edge {
	if a.adj != nil {
		return a.adj
	}
	a.adj = make(map[NodeID][]Edge)
	for _, e := range a.Edges() {
		a.adj[e.Source] = append(a.adj[e.Source], e)
	}
	return a.adj
}

// Receive merges a batch of edges learned from a neighbor into the local
// edge set. An edge whose (source, destination) pair is already known is
// dropped, even if it carries a different cost: the first cost seen wins.
// Receive returns the number of edges that were new.
func (a *Agent) Receive(batch []Edge) int {
	added := 0
	for _, e := range batch {
		if a.insert(e) {
			added++
		}
	}
	return added
}

func (a *Agent) insert(e Edge) bool {
	k := e.Key()
	if _, exists := a.edges[k]; exists {
		return false
	}
	a.edges[k] = e
	a.adj = nil
	return true
}

// Edges returns a copy of the local edge set sorted by source and
// destination.
func (a *Agent) Edges() []Edge {
	out := maps.Values(a.edges)
	slices.SortFunc(out, func(x, y Edge) int {
		switch {
		case x.Key().Less(y.Key()):
			return -1
		case y.Key().Less(x.Key()):
			return 1
		default:
			return 0
		}
	})
	return out
}

// ShortestPaths returns a copy of the best paths known so far, keyed by
// destination. The agent's own entry is a zero-cost path to itself once
// COMPUTE has run.
func (a *Agent) ShortestPaths() map[NodeID]Path {
	out := make(map[NodeID]Path, len(a.paths))
	for dst, p := range a.paths {
		out[dst] = *p
	}
	return out
}

// PathTo returns the best known path to dst. The second return value is
// false if no path to dst is known.
func (a *Agent) PathTo(dst NodeID) (Path, bool) {
	p, ok := a.paths[dst]
	if !ok {
		return Path{}, false
	}
	return *p, true
}
