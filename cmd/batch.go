package cmd

import (
	"github.com/brandonshearin/distvec/batch"
	"github.com/brandonshearin/distvec/distvec"
	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var batchOpts struct {
	runs      int
	firstSeed int64
	parallel  int
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Simulate many seeds concurrently and compare the results with the optimum",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err = cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()

		reg := prometheus.NewRegistry()
		runner, err := batch.NewRunner(batch.Config{
			Runs:           batchOpts.runs,
			FirstSeed:      batchOpts.firstSeed,
			Topology:       cfg.BuildTopologyWithSeed,
			MaxCost:        distvec.Cost(cfg.Costs.MaxCost),
			Rounds:         cfg.Simulation.Rounds,
			Workers:        batchOpts.parallel,
			ComputeWorkers: cfg.Simulation.Workers,
			StopWhenStable: cfg.Simulation.StopWhenStable,
			Metrics:        reg,
			Logger:         logger,
		})
		if err != nil {
			return err
		}

		results, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(results)
		if err != nil {
			return xerrors.Errorf("marshal results: %w", err)
		}
		if _, err = cmd.OutOrStdout().Write(data); err != nil {
			return err
		}

		families, err := reg.Gather()
		if err != nil {
			return xerrors.Errorf("gather metrics: %w", err)
		}
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				switch {
				case m.GetCounter() != nil:
					logger.Info("metric", "name", mf.GetName(), "labels", m.GetLabel(), "value", m.GetCounter().GetValue())
				case m.GetHistogram() != nil:
					h := m.GetHistogram()
					logger.Info("metric", "name", mf.GetName(), "count", h.GetSampleCount(), "sum", h.GetSampleSum())
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchOpts.runs, "runs", 10, "Number of simulations")
	batchCmd.Flags().Int64Var(&batchOpts.firstSeed, "first-seed", 1, "Seed of the first simulation")
	batchCmd.Flags().IntVarP(&batchOpts.parallel, "parallel", "p", 4, "Simulations running at the same time")
}
