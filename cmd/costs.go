package cmd

import (
	"github.com/spf13/cobra"
)

var costsSeed int64

// costsCmd represents the costs command
var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Print the link cost matrix of the configured topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Topology.Seed = costsSeed
			cfg.Costs.Seed = costsSeed
		}
		if err = cfg.Validate(); err != nil {
			return err
		}

		topo, err := cfg.BuildTopology()
		if err != nil {
			return err
		}
		costs, err := cfg.CostAssigner().Assign(topo)
		if err != nil {
			return err
		}
		return costs.Dump(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(costsCmd)
	costsCmd.Flags().Int64VarP(&costsSeed, "seed", "s", 0, "Seed for the topology and the link costs")
}
