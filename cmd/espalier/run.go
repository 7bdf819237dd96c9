package main

import (
	"context"
	"os"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the traction scenario with a live terminal monitor",
	Long: `Starts the engine and samples every output at the configured interval.
Control commands are read from stdin while running:

  set <slider> <value>   e.g. "set throttle 0.8", "set wheel_2.grip 0"
  on|off|flip <switch>   e.g. "on traction_control"
  list                   show every control`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		duration, _ := cmd.Flags().GetDuration("duration")
		report, _ := cmd.Flags().GetBool("report")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if !jsonMode && runner.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		return cli.Run(context.Background(), app, cli.RunOptions{
			Duration: duration,
			JSON:     jsonMode,
			Report:   report,
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Stream frames as NDJSON instead of the terminal table")
	runCmd.Flags().Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	runCmd.Flags().Bool("report", true, "Print a summary of the recorded window on exit")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
