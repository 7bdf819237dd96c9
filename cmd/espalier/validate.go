package main

import (
	"fmt"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the graph for consistency",
	Long:  `Loads the configuration, builds the scenario and reports unbound slots or duplicate output labels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer app.Close()

		if err := validator.ValidateGraph(app.Graph.Outputs(), slotNodes(app)...); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Graph is valid! ✅ (%d outputs, %d tickers)\n",
			len(app.Graph.Outputs()), len(app.Graph.Tickers()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func slotNodes(app *cli.App) []domain.Node {
	slots := app.Graph.Slots()
	nodes := make([]domain.Node, len(slots))
	for i, s := range slots {
		nodes[i] = s
	}
	return nodes
}
