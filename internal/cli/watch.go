// internal/cli/watch.go
package voi

import (
	"github.com/mwiater/voi/internal/tui"
	"github.com/spf13/cobra"
)

var (
	watchFlags scenarioFlags
	watchStep  float64
)

// watchCmd implements 'watch', an interactive view that reruns the analysis
// as the threshold is adjusted.
var watchCmd = &cobra.Command{
	Use:         "watch",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior, experiment"},
	Short:       "Interactively explore a scenario's threshold",
	Long:        `The 'watch' command runs the analysis in the background with a spinner. Press + or - to move the threshold and rerun; results of superseded runs are discarded. Press q to quit and cancel pending work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := buildScenario(cmd, &watchFlags)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), sc, getConfig().AnalysisOptions(), watchStep)
	},
}

func init() {
	addScenarioFlags(watchCmd, &watchFlags)
	watchCmd.Flags().Float64Var(&watchStep, "step", tui.DefaultThresholdStep, "threshold change per key press")
	rootCmd.AddCommand(watchCmd)
}
