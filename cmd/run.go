package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/brandonshearin/distvec/config"
	"github.com/brandonshearin/distvec/distvec"
	"github.com/brandonshearin/distvec/report"
	"github.com/brandonshearin/distvec/shortestpath"
	"github.com/brandonshearin/distvec/topology"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var runOpts struct {
	rounds         int
	seed           int64
	nodes          int
	kind           string
	degree         int
	format         string
	root           int64
	workers        int
	sequential     bool
	stopWhenStable bool
	dumpCosts      bool
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the protocol and print the computed paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		if err = cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()

		return simulate(cmd.Context(), cmd.OutOrStdout(), cfg, runOpts.dumpCosts, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntVarP(&runOpts.rounds, "rounds", "r", 0, "Number of protocol rounds")
	f.Int64VarP(&runOpts.seed, "seed", "s", 0, "Seed for the topology and the link costs")
	f.IntVarP(&runOpts.nodes, "nodes", "n", 0, "Number of nodes")
	f.StringVarP(&runOpts.kind, "kind", "k", "", "Topology kind: ring, mesh, kout or file")
	f.IntVar(&runOpts.degree, "degree", 0, "Links per node for kout topologies")
	f.StringVarP(&runOpts.format, "format", "f", "", "Output format: table, yaml or dot")
	f.Int64Var(&runOpts.root, "root", 0, "Only report this node; highlights its first hops in dot output")
	f.IntVarP(&runOpts.workers, "workers", "w", 0, "Agents stepped in parallel")
	f.BoolVar(&runOpts.sequential, "sequential", false, "Use the sequential scheduler")
	f.BoolVar(&runOpts.stopWhenStable, "stop-when-stable", false, "Stop once a round changes no path")
	f.BoolVar(&runOpts.dumpCosts, "dump-costs", false, "Print the cost matrix before the paths")
}

// applyRunFlags overrides cfg with every flag set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("rounds") {
		cfg.Simulation.Rounds = runOpts.rounds
	}
	if f.Changed("seed") {
		cfg.Topology.Seed = runOpts.seed
		cfg.Costs.Seed = runOpts.seed
	}
	if f.Changed("nodes") {
		cfg.Topology.Nodes = runOpts.nodes
	}
	if f.Changed("kind") {
		cfg.Topology.Kind = runOpts.kind
	}
	if f.Changed("degree") {
		cfg.Topology.Degree = runOpts.degree
	}
	if f.Changed("format") {
		cfg.Output.Format = runOpts.format
	}
	if f.Changed("root") {
		cfg.Output.Root = runOpts.root
	}
	if f.Changed("workers") {
		cfg.Simulation.Workers = runOpts.workers
	}
	if f.Changed("sequential") {
		cfg.Simulation.Sequential = runOpts.sequential
	}
	if f.Changed("stop-when-stable") {
		cfg.Simulation.StopWhenStable = runOpts.stopWhenStable
	}
}

// simulate builds the configured network, runs the protocol and writes the
// report to out.
func simulate(ctx context.Context, out io.Writer, cfg config.Config, dumpCosts bool, logger *slog.Logger) error {
	topo, err := cfg.BuildTopology()
	if err != nil {
		return err
	}
	costs, err := cfg.CostAssigner().Assign(topo)
	if err != nil {
		return err
	}
	if dumpCosts {
		if err = costs.Dump(out); err != nil {
			return err
		}
	}

	var agents []*distvec.Agent
	if cfg.Simulation.Sequential {
		agents, err = runSequential(ctx, topo, costs, cfg, logger)
	} else {
		agents, err = runParallel(ctx, topo, costs, cfg, logger)
	}
	if err != nil {
		return err
	}

	var (
		sources []report.Source
		root    report.Source
	)
	for _, a := range agents {
		if cfg.Output.Root < 0 || int64(a.ID()) == cfg.Output.Root {
			sources = append(sources, a)
		}
		if int64(a.ID()) == cfg.Output.Root {
			root = a
		}
	}
	if cfg.Output.Root >= 0 && root == nil {
		return xerrors.Errorf("root %d: %w", cfg.Output.Root, topology.ErrUnknownNode)
	}

	switch cfg.Output.Format {
	case config.FormatYAML:
		return report.WriteYAML(out, sources)
	case config.FormatDOT:
		dot, err := report.NetworkDOT(topo, costs, root)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, dot)
		return err
	default:
		return report.WriteTable(out, sources)
	}
}

func runSequential(ctx context.Context, topo topology.Topology, costs *distvec.CostMatrix, cfg config.Config, logger *slog.Logger) ([]*distvec.Agent, error) {
	net, err := distvec.NewNetwork(topo, costs, logger)
	if err != nil {
		return nil, err
	}
	for net.Round() < cfg.Simulation.Rounds {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = net.Step(); err != nil {
			return nil, err
		}
		if cfg.Simulation.StopWhenStable && net.Round() >= 3 && relaxations(net.Agents()) == 0 {
			logger.Info("paths stable", "round", net.Round())
			break
		}
	}
	return net.Agents(), nil
}

func runParallel(ctx context.Context, topo topology.Topology, costs *distvec.CostMatrix, cfg config.Config, logger *slog.Logger) ([]*distvec.Agent, error) {
	calc, err := shortestpath.NewCalculator(shortestpath.Config{
		Topology:        topo,
		Costs:           costs,
		ComputeWorkers:  cfg.Simulation.Workers,
		StopWhenStable:  cfg.Simulation.StopWhenStable,
		LogRouteChanges: cfg.Simulation.LogRouteChanges,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = calc.Close() }()

	if err = calc.Run(ctx, cfg.Simulation.Rounds); err != nil {
		return nil, err
	}
	return calc.Agents(), nil
}

func relaxations(agents []*distvec.Agent) int {
	total := 0
	for _, a := range agents {
		total += a.Relaxations()
	}
	return total
}
