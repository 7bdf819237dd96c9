package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier runs bounded, time-variant signal graphs",
	Long: `Espalier composes signal nodes (constants, inputs, integrators, delays,
latches) into a graph, ticks the time-variant ones in the background and
samples the outputs. It ships with a traction-control scenario.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default: ./espalier.yaml if present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadApp reads the configuration named by the persistent flags and builds
// the application around it.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	return cli.NewApp(cfg, logger, debug)
}
