package shortestpath

import (
	"context"
	"log/slog"

	"github.com/brandonshearin/distvec/bspgraph"
	"github.com/brandonshearin/distvec/bspgraph/aggregator"
	"github.com/brandonshearin/distvec/bspgraph/message"
	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/internal/logging"
	"github.com/brandonshearin/distvec/topology"
	"github.com/hashicorp/go-multierror"
	"github.com/r3labs/diff/v3"
	"github.com/tevino/abool"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

const relaxationsAggr = "relaxations"

var (
	// ErrAlreadyRunning is returned by Run when another run of the same
	// calculator is still in progress.
	ErrAlreadyRunning = xerrors.New("calculation already in progress")

	// ErrInvalidConfig is wrapped by every Config validation error.
	ErrInvalidConfig = xerrors.New("invalid calculator configuration")
)

// Config encapsulates the settings for a Calculator.
type Config struct {
	// Topology describes the nodes and their direct neighbors.
	Topology topology.Topology

	// Costs holds the link costs assigned to Topology.
	Costs *distvec.CostMatrix

	// ComputeWorkers is the number of agents stepped in parallel. Defaults
	// to 1.
	ComputeWorkers int

	// StopWhenStable ends a run early after the first COMPUTE round in
	// which no agent changed a path.
	StopWhenStable bool

	// LogRouteChanges logs, at debug level, every path that changed in a
	// round.
	LogRouteChanges bool

	// Logger is optional.
	Logger *slog.Logger
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Topology == nil {
		err = multierror.Append(err, xerrors.Errorf("topology not specified: %w", ErrInvalidConfig))
	}
	if cfg.Costs == nil {
		err = multierror.Append(err, xerrors.Errorf("cost matrix not specified: %w", ErrInvalidConfig))
	}
	if cfg.Topology != nil && cfg.Costs != nil && cfg.Costs.Size() != cfg.Topology.NodeCount() {
		err = multierror.Append(err, xerrors.Errorf("cost matrix covers %d nodes, topology has %d: %w",
			cfg.Costs.Size(), cfg.Topology.NodeCount(), ErrInvalidConfig))
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return err
}

// Calculator runs one distance-vector agent per node on top of a bspgraph
// instance. Every superstep is one protocol round; the superstep barrier
// guarantees that edges broadcast in a round are only seen in the next
// one.
type Calculator struct {
	cfg    Config
	g      *bspgraph.Graph
	ex     *bspgraph.Executor
	agents []*distvec.Agent
	byID   map[distvec.NodeID]*distvec.Agent
	log    *slog.Logger

	running      *abool.AtomicBool
	lastRelaxed  int
	prevSnapshot map[distvec.NodeID]map[distvec.NodeID]distvec.Path
}

// NewCalculator creates a calculator with one agent per node of
// cfg.Topology. Callers must invoke Close once they are done with it.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("calculator config validation failed: %w", err)
	}
	if err := topology.Validate(cfg.Topology); err != nil {
		return nil, xerrors.Errorf("calculator config validation failed: %w", err)
	}

	c := &Calculator{
		cfg:     cfg,
		byID:    make(map[distvec.NodeID]*distvec.Agent, cfg.Topology.NodeCount()),
		log:     cfg.Logger,
		running: abool.New(),
	}

	var err error
	if c.g, err = bspgraph.NewGraph(bspgraph.GraphConfig{
		ComputeFn:      c.stepAgent,
		ComputeWorkers: cfg.ComputeWorkers,
	}); err != nil {
		return nil, err
	}
	c.g.RegisterAggregator(relaxationsAggr, new(aggregator.IntAccumulator))

	ch := graphChannel{g: c.g}
	for i := 0; i < cfg.Topology.NodeCount(); i++ {
		id := cfg.Topology.IDOf(i)
		a, err := distvec.NewAgent(distvec.AgentConfig{
			ID:        id,
			Neighbors: cfg.Topology.NeighborsOf(id),
			Costs:     cfg.Costs,
			Channel:   ch,
			Logger:    cfg.Logger,
		})
		if err != nil {
			_ = c.g.Close()
			return nil, err
		}
		c.g.AddVertex(vertexID(id), a)
		c.agents = append(c.agents, a)
		c.byID[id] = a
	}
	slices.SortFunc(c.agents, func(x, y *distvec.Agent) int { return int(x.ID() - y.ID()) })

	c.ex = bspgraph.NewExecutor(c.g, bspgraph.ExecutorCallbacks{
		PostStep:            c.postStep,
		PostStepKeepRunning: c.keepRunning,
	})
	return c, nil
}

// Close releases the resources held by the underlying graph.
func (c *Calculator) Close() error {
	return c.g.Close()
}

// Run executes up to rounds protocol rounds. Consecutive calls continue
// where the previous run stopped. Only one run may be in progress at any
// time.
func (c *Calculator) Run(ctx context.Context, rounds int) error {
	if !c.running.SetToIf(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.UnSet()

	if err := c.ex.RunSteps(ctx, rounds); err != nil {
		return xerrors.Errorf("shortest path calculation: %w", err)
	}
	return nil
}

// Round returns the number of rounds executed so far.
func (c *Calculator) Round() int { return c.ex.Superstep() }

// Agent returns the agent running on node id.
func (c *Calculator) Agent(id distvec.NodeID) (*distvec.Agent, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Agents returns all agents ordered by ID.
func (c *Calculator) Agents() []*distvec.Agent { return append([]*distvec.Agent(nil), c.agents...) }

// ShortestPaths returns the path trees of all agents keyed by node.
func (c *Calculator) ShortestPaths() map[distvec.NodeID]map[distvec.NodeID]distvec.Path {
	out := make(map[distvec.NodeID]map[distvec.NodeID]distvec.Path, len(c.agents))
	for _, a := range c.agents {
		out[a.ID()] = a.ShortestPaths()
	}
	return out
}

// stepAgent hands the edge batches received in the previous superstep to
// the vertex agent and then runs the agent's next phase.
func (c *Calculator) stepAgent(g *bspgraph.Graph, v *bspgraph.Vertex, msgIt message.Iterator) error {
	a := v.Value().(*distvec.Agent)
	for msgIt.Next() {
		batch, ok := msgIt.Message().(EdgeBatchMessage)
		if !ok {
			continue
		}
		a.Receive(batch.Edges)
	}
	if err := msgIt.Error(); err != nil {
		return err
	}

	if err := a.Step(g.Superstep() + 1); err != nil {
		return err
	}
	g.Aggregator(relaxationsAggr).Aggregate(a.Relaxations())
	return nil
}

func (c *Calculator) postStep(_ context.Context, g *bspgraph.Graph, active int) error {
	round := g.Superstep() + 1
	c.lastRelaxed = g.Aggregator(relaxationsAggr).Delta().(int)
	c.log.Info("round complete", "round", round, "agents", active, "relaxations", c.lastRelaxed)

	if c.cfg.LogRouteChanges {
		return c.logRouteChanges(round)
	}
	return nil
}

func (c *Calculator) keepRunning(_ context.Context, g *bspgraph.Graph, _ int) (bool, error) {
	round := g.Superstep() + 1
	if c.cfg.StopWhenStable && round >= 3 && c.lastRelaxed == 0 {
		c.log.Info("paths stable", "round", round)
		return false, nil
	}
	return true, nil
}

// logRouteChanges diffs every agent's path tree against the one seen after
// the previous round.
func (c *Calculator) logRouteChanges(round int) error {
	cur := c.ShortestPaths()
	defer func() { c.prevSnapshot = cur }()

	for _, a := range c.agents {
		changes, err := diff.Diff(c.prevSnapshot[a.ID()], cur[a.ID()])
		if err != nil {
			return xerrors.Errorf("diff paths of node %d: %w", a.ID(), err)
		}
		for _, ch := range changes {
			c.log.Debug("route changed",
				"round", round,
				"node", a.ID(),
				"change", ch.Type,
				"path", ch.Path,
				"from", ch.From,
				"to", ch.To,
			)
		}
	}
	return nil
}
