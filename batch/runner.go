// Package batch runs many independent simulations concurrently and checks
// each of them against the exact shortest-path solution.
package batch

import (
	"context"
	"log/slog"
	"sort"

	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/internal/logging"
	"github.com/brandonshearin/distvec/pipeline"
	"github.com/brandonshearin/distvec/shortestpath"
	"github.com/brandonshearin/distvec/topology"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// TopologyFunc builds the network for the run with the given seed.
type TopologyFunc func(seed int64) (topology.Topology, error)

// Config encapsulates the options for a batch of runs.
type Config struct {
	// Runs is the number of simulations; run i uses seed FirstSeed+i for
	// both the topology and the link costs.
	Runs      int
	FirstSeed int64

	Topology TopologyFunc

	// MaxCost bounds the randomly assigned link costs. Defaults to
	// distvec.DefaultMaxCost.
	MaxCost distvec.Cost

	// Rounds caps the number of protocol rounds of every run.
	Rounds int

	// Workers is the number of runs simulated in parallel. Defaults to 1.
	Workers int

	// ComputeWorkers is passed to each run's calculator.
	ComputeWorkers int

	StopWhenStable bool

	// Metrics, if set, receives the batch counters.
	Metrics prometheus.Registerer

	Logger *slog.Logger
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Runs <= 0 {
		err = multierror.Append(err, xerrors.Errorf("runs must be positive, got %d", cfg.Runs))
	}
	if cfg.Rounds <= 0 {
		err = multierror.Append(err, xerrors.Errorf("rounds must be positive, got %d", cfg.Rounds))
	}
	if cfg.Topology == nil {
		err = multierror.Append(err, xerrors.New("topology builder not specified"))
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = distvec.DefaultMaxCost
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return err
}

// Runner sends a range of seeds through a simulate/evaluate pipeline.
type Runner struct {
	cfg     Config
	p       *pipeline.Pipeline
	metrics *metrics
}

// NewRunner returns a runner for cfg.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("batch config validation failed: %w", err)
	}
	m, err := newMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		metrics: m,
		p: pipeline.New(
			pipeline.FixedWorkerPool(simulator{cfg: cfg}, cfg.Workers),
			pipeline.FIFO(evaluator{}),
		),
	}, nil
}

// Run executes all runs and returns their results ordered by seed. It
// blocks until every run completed, one of them failed or ctx expired.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	src := &seedSource{next: r.cfg.FirstSeed, end: r.cfg.FirstSeed + int64(r.cfg.Runs)}
	sink := &collectingSink{onDone: func(res Result) {
		r.metrics.observe(res)
		r.cfg.Logger.Info("run complete",
			"run", res.RunID,
			"seed", res.Seed,
			"rounds", res.Rounds,
			"known", res.KnownPairs,
			"optimal", res.OptimalPairs,
			"reachable", res.ReachablePairs,
		)
	}}

	if err := r.p.Process(ctx, src, sink); err != nil {
		return nil, err
	}

	sort.Slice(sink.results, func(i, j int) bool { return sink.results[i].Seed < sink.results[j].Seed })
	return sink.results, nil
}

// simulator builds the network of a run and executes the protocol on it.
type simulator struct {
	cfg Config
}

func (s simulator) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*runPayload)

	topo, err := s.cfg.Topology(payload.Seed)
	if err != nil {
		return nil, xerrors.Errorf("run %s: build topology: %w", payload.RunID, err)
	}
	assigner := distvec.NewCostAssigner(payload.Seed)
	assigner.MaxCost = s.cfg.MaxCost
	costs, err := assigner.Assign(topo)
	if err != nil {
		return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
	}

	calc, err := shortestpath.NewCalculator(shortestpath.Config{
		Topology:       topo,
		Costs:          costs,
		ComputeWorkers: s.cfg.ComputeWorkers,
		StopWhenStable: s.cfg.StopWhenStable,
		Logger:         s.cfg.Logger.With("run", payload.RunID.String()),
	})
	if err != nil {
		return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
	}
	defer func() { _ = calc.Close() }()

	if err = calc.Run(ctx, s.cfg.Rounds); err != nil {
		return nil, xerrors.Errorf("run %s: %w", payload.RunID, err)
	}

	payload.Topology = topo
	payload.Costs = costs
	payload.Paths = calc.ShortestPaths()
	payload.Rounds = calc.Round()
	return payload, nil
}
