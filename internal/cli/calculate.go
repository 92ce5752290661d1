// internal/cli/calculate.go
package voi

import (
	"fmt"
	"io"

	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/costofdelay"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/evpi"
	"github.com/mwiater/voi/internal/evsi"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/logging"
	"github.com/mwiater/voi/internal/netvalue"
	"github.com/mwiater/voi/internal/report"
	"github.com/spf13/cobra"
)

var (
	evpiFlags     scenarioFlags
	evsiFlags     scenarioFlags
	samplesFlags  scenarioFlags
	delayFlags    scenarioFlags
	netValueFlags scenarioFlags
)

// evpiCmd implements 'evpi', the value of resolving all uncertainty.
var evpiCmd = &cobra.Command{
	Use:         "evpi",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior"},
	Short:       "Expected value of perfect information",
	Long:        `The 'evpi' command prices perfect knowledge of the lift: closed form for normal priors, Monte Carlo otherwise. Only the decision and prior inputs are needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := evpiFlags.load(cmd)
		if err != nil {
			return err
		}
		if err := file.Decision.Validate(); err != nil {
			return err
		}
		prior, err := file.Prior.Build()
		if err != nil {
			return err
		}

		var res evpi.Result
		if normal, ok := prior.(distribution.Normal); ok {
			res = evpi.Compute(normal, file.Decision)
		} else {
			opts := getConfig().AnalysisOptions().Resolved()
			res, err = evpi.Simulate(cmd.Context(), prior, file.Decision, opts.Simulation(analysis.StreamEVPI))
			if err != nil {
				return err
			}
		}
		logging.LogCalculation("evpi", 0, map[string]any{"prior": distribution.Describe(prior), "value": res.Value, "method": string(res.Method)})
		return emit(cmd.OutOrStdout(), res, report.EVPI(res), distribution.Warnings(prior))
	},
}

// evsiCmd implements 'evsi', the value of the planned experiment.
var evsiCmd = &cobra.Command{
	Use:         "evsi",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior, experiment"},
	Short:       "Expected value of sample information",
	Long:        `The 'evsi' command prices the information the planned experiment would produce. Normal priors use the pre-posterior fast path unless --forceSimulation is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := buildScenario(cmd, &evsiFlags)
		if err != nil {
			return err
		}
		cfg := getConfig()
		sizes := sc.Design.SampleSizes()

		var res evsi.Result
		if normal, ok := sc.Prior.(distribution.Normal); ok && !cfg.ForceSimulation {
			res, err = evsi.FastPath(normal, sc.Inputs, sizes)
		} else {
			opts := cfg.AnalysisOptions().Resolved()
			res, err = evsi.Simulate(cmd.Context(), sc.Prior, sc.Inputs, sizes, opts.Simulation(analysis.StreamEVSI))
		}
		if err != nil {
			return err
		}
		logging.LogCalculation("evsi", 0, map[string]any{"scenario": sc.Name, "value": res.Value, "method": string(res.Method)})
		return emit(cmd.OutOrStdout(), res, report.EVSI(res), distribution.Warnings(sc.Prior))
	},
}

// samplesCmd implements 'samples', the per-arm sample sizes of a design.
var samplesCmd = &cobra.Command{
	Use:         "samples",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "experiment"},
	Short:       "Derive per-arm sample sizes from the experiment design",
	Long:        `The 'samples' command turns traffic, duration and allocation into exact control and variant counts. Only the experiment inputs are needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := samplesFlags.load(cmd)
		if err != nil {
			return err
		}
		if err := file.Experiment.Validate(); err != nil {
			return err
		}
		sizes := file.Experiment.SampleSizes()
		out := struct {
			SampleSizes       experiment.SampleSizes `json:"sampleSizes"`
			DaysUntilDecision float64                `json:"daysUntilDecision"`
		}{sizes, file.Experiment.DaysUntilDecision()}
		var warnings []string
		if sizes.Control == 0 || sizes.Variant == 0 {
			warnings = append(warnings, "one arm is empty; EVSI and net value cannot be computed for this design")
		}
		return emit(cmd.OutOrStdout(), out, report.SampleSizes(sizes, out.DaysUntilDecision), warnings)
	},
}

// delayCmd implements 'delay', the value foregone while testing.
var delayCmd = &cobra.Command{
	Use:         "delay",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior, experiment"},
	Short:       "Cost of delaying the decision to run the test",
	Long:        `The 'delay' command estimates the expected value lost by testing instead of shipping now, counting both the test period and decision latency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := delayFlags.load(cmd)
		if err != nil {
			return err
		}
		if err := file.Decision.Validate(); err != nil {
			return err
		}
		if err := file.Experiment.Validate(); err != nil {
			return err
		}
		prior, err := file.Prior.Build()
		if err != nil {
			return err
		}
		res := costofdelay.Compute(prior.Mean(), file.Decision, file.Experiment)
		logging.LogCalculation("delay", 0, map[string]any{"value": res.Value, "decision": string(res.DefaultDecision)})
		return emit(cmd.OutOrStdout(), res, report.CostOfDelay(res), nil)
	},
}

// netValueCmd implements 'netvalue', the timing-aware value of testing.
var netValueCmd = &cobra.Command{
	Use:         "netvalue",
	GroupID:     calculationsGroup,
	Annotations: map[string]string{inputsAnnotation: "decision, prior, experiment"},
	Short:       "Net value of testing over shipping or holding now",
	Long:        `The 'netvalue' command simulates a year with and without the test, accounting for the test period and latency, and reports the clamped difference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := buildScenario(cmd, &netValueFlags)
		if err != nil {
			return err
		}
		opts := getConfig().AnalysisOptions().Resolved()
		res, err := netvalue.Simulate(cmd.Context(), sc.Prior, sc.Inputs, sc.Design, opts.Simulation(analysis.StreamNetValue))
		if err != nil {
			return err
		}
		logging.LogCalculation("netvalue", 0, map[string]any{"scenario": sc.Name, "value": res.Value, "seed": opts.Seed})
		return emit(cmd.OutOrStdout(), res, report.NetValue(res), distribution.Warnings(sc.Prior))
	},
}

// buildScenario loads and fully validates a scenario.
func buildScenario(cmd *cobra.Command, sf *scenarioFlags) (analysis.Scenario, error) {
	file, err := sf.load(cmd)
	if err != nil {
		return analysis.Scenario{}, err
	}
	return file.Build()
}

// emit prints v as JSON in JSON mode, otherwise the rendered text followed
// by any advisories.
func emit(w io.Writer, v any, text string, advisories []string) error {
	if JSONModeEnabled() {
		return report.JSON(w, v)
	}
	if _, err := fmt.Fprint(w, text); err != nil {
		return err
	}
	if adv := report.Advisories(advisories); adv != "" {
		_, err := fmt.Fprint(w, "\n"+adv)
		return err
	}
	return nil
}

func init() {
	addScenarioFlags(evpiCmd, &evpiFlags)
	addScenarioFlags(evsiCmd, &evsiFlags)
	addScenarioFlags(samplesCmd, &samplesFlags)
	addScenarioFlags(delayCmd, &delayFlags)
	addScenarioFlags(netValueCmd, &netValueFlags)
	rootCmd.AddCommand(evpiCmd, evsiCmd, samplesCmd, delayCmd, netValueCmd)
}
