package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/brandonshearin/distvec/config"
	"github.com/brandonshearin/distvec/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvsim",
	Short: "Distance-vector routing simulator",
	Long: `dvsim simulates a distance-vector routing protocol on a generated or loaded topology.
Every node only knows its direct links; it learns the links of its neighbors through a single
broadcast and then computes shortest paths over what it knows.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it. The
// context passed to the commands is cancelled on interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

// loadConfig reads the configuration and applies the persistent flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, func() error, error) {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Prefix:  "dvsim",
		File:    cfg.Logging.File,
		Console: cmd.ErrOrStderr(),
	})
}
