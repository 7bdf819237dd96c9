package main

import (
	"fmt"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the node graph visualization",
	Long:  `Builds the scenario and outputs a Mermaid diagram (graph TD) of its nodes, with feedback edges dotted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withValues, _ := cmd.Flags().GetBool("values")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.GraphOverlay
		if withValues {
			frame := app.Engine.Snapshot()
			overlay = &graph.GraphOverlay{Values: make(map[string]float64, len(frame.Labels))}
			for i, label := range frame.Labels {
				overlay.Values[label] = frame.Values[i]
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Engine.Inspect(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("values", false, "Annotate labelled nodes with their initial value")
}
