// internal/cli/analyze.go
package voi

import (
	"fmt"

	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/report"
	"github.com/mwiater/voi/internal/scenario"
	"github.com/mwiater/voi/internal/validate"
	"github.com/mwiater/voi/internal/worker"
	"github.com/spf13/cobra"
)

var (
	analyzeFlags scenarioFlags
	analyzeEcho  string
)

// analyzeCmd implements 'analyze', which runs every calculator for one
// scenario on the background worker and prints the combined report.
var analyzeCmd = &cobra.Command{
	Use:         "analyze",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior, experiment"},
	Short:       "Run every calculation for a scenario",
	Long:        `The 'analyze' command computes sample sizes, EVPI, EVSI, cost of delay and net value for one scenario and prints a combined report. Interrupting the command cancels the simulations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := buildScenario(cmd, &analyzeFlags)
		if err != nil {
			return err
		}
		if err := echoScenario(cmd, sc); err != nil {
			return err
		}

		ctx := cmd.Context()
		d := worker.New(ctx, nil)
		defer d.Close()

		id, err := d.Submit(worker.Job{Scenario: sc, Options: getConfig().AnalysisOptions()})
		if err != nil {
			return err
		}
		out, err := d.Await(ctx, id)
		if err != nil {
			return fmt.Errorf("analysis interrupted: %w", err)
		}
		if out.Err != nil {
			return out.Err
		}

		w := cmd.OutOrStdout()
		if JSONModeEnabled() {
			return report.JSON(w, out.Report)
		}
		return report.Text(w, out.Report)
	},
}

// echoScenario writes the resolved inputs to stderr so stdout stays a
// single report.
func echoScenario(cmd *cobra.Command, sc analysis.Scenario) error {
	var format scenario.Format
	switch analyzeEcho {
	case "":
		return nil
	case string(scenario.FormatJSON):
		format = scenario.FormatJSON
	case string(scenario.FormatYAML):
		format = scenario.FormatYAML
	default:
		return validate.Errorf("echo", "must be json or yaml, got %q", analyzeEcho)
	}
	data, err := scenario.Encode(scenario.FromScenario(sc), format)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	_, err = fmt.Fprintln(cmd.ErrOrStderr(), string(data))
	return err
}

func init() {
	addScenarioFlags(analyzeCmd, &analyzeFlags)
	analyzeCmd.Flags().StringVar(&analyzeEcho, "echo", "", "print the resolved scenario as json or yaml before the report")
	rootCmd.AddCommand(analyzeCmd)
}
