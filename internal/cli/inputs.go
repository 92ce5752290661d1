// internal/cli/inputs.go
package voi

import (
	"github.com/k0kubun/pp"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/logging"
	"github.com/mwiater/voi/internal/scenario"
	"github.com/spf13/cobra"
)

// scenarioFlags are the inline inputs every calculation command accepts. With
// --scenario the file is read first and any flag set explicitly overrides it.
type scenarioFlags struct {
	path string
	file scenario.File
}

func addScenarioFlags(cmd *cobra.Command, sf *scenarioFlags) {
	f := cmd.Flags()
	f.StringVar(&sf.path, "scenario", "", "scenario file (.json, .yaml or .yml)")
	f.StringVar(&sf.file.Name, "name", "", "scenario name")

	f.Float64Var(&sf.file.Decision.K, "k", 0, "annual dollar value of one unit of relative lift")
	f.Float64Var(&sf.file.Decision.Threshold, "threshold", 0, "minimum relative lift worth acting on")
	f.Float64Var(&sf.file.Decision.BaselineRate, "baselineRate", 0, "control conversion rate in (0, 1)")

	f.StringVar(&sf.file.Prior.Type, "priorType", string(distribution.KindNormal), "prior family: normal, student-t or uniform")
	f.Float64Var(&sf.file.Prior.Location, "priorLocation", 0, "prior location (normal, student-t)")
	f.Float64Var(&sf.file.Prior.Scale, "priorScale", 0, "prior scale (normal, student-t)")
	f.Float64Var(&sf.file.Prior.DegreesOfFreedom, "priorDF", 0, "prior degrees of freedom (student-t)")
	f.Float64Var(&sf.file.Prior.Low, "priorLow", 0, "lower bound (uniform)")
	f.Float64Var(&sf.file.Prior.High, "priorHigh", 0, "upper bound (uniform)")
	f.Float64("intervalLow", 0, "lower end of a central credible interval for the lift")
	f.Float64("intervalHigh", 0, "upper end of a central credible interval for the lift")
	f.Float64("intervalConfidence", distribution.DefaultIntervalConfidence, "coverage of the credible interval")

	f.Float64Var(&sf.file.Experiment.DailyTraffic, "dailyTraffic", 0, "visitors per day")
	f.IntVar(&sf.file.Experiment.TestDurationDays, "testDurationDays", 0, "test length in days")
	f.Float64Var(&sf.file.Experiment.EligibilityFraction, "eligibilityFraction", 1, "share of traffic eligible for the test")
	f.Float64Var(&sf.file.Experiment.VariantFraction, "variantFraction", 0.5, "share of eligible traffic sent to the variant")
	f.Float64Var(&sf.file.Experiment.ConversionLatencyDays, "conversionLatencyDays", 0, "days for conversions to mature")
	f.Float64Var(&sf.file.Experiment.DecisionLatencyDays, "decisionLatencyDays", 0, "days from result to shipped decision")
}

// overlay copies every explicitly set flag over base.
func (sf *scenarioFlags) overlay(cmd *cobra.Command, base scenario.File) scenario.File {
	changed := cmd.Flags().Changed
	set := func(name string, apply func()) {
		if changed(name) {
			apply()
		}
	}
	in := sf.file
	set("name", func() { base.Name = in.Name })
	set("k", func() { base.Decision.K = in.Decision.K })
	set("threshold", func() { base.Decision.Threshold = in.Decision.Threshold })
	set("baselineRate", func() { base.Decision.BaselineRate = in.Decision.BaselineRate })
	set("priorType", func() { base.Prior.Type = in.Prior.Type })
	set("priorLocation", func() { base.Prior.Location = in.Prior.Location })
	set("priorScale", func() { base.Prior.Scale = in.Prior.Scale })
	set("priorDF", func() { base.Prior.DegreesOfFreedom = in.Prior.DegreesOfFreedom })
	set("priorLow", func() { base.Prior.Low = in.Prior.Low })
	set("priorHigh", func() { base.Prior.High = in.Prior.High })
	set("dailyTraffic", func() { base.Experiment.DailyTraffic = in.Experiment.DailyTraffic })
	set("testDurationDays", func() { base.Experiment.TestDurationDays = in.Experiment.TestDurationDays })
	set("eligibilityFraction", func() { base.Experiment.EligibilityFraction = in.Experiment.EligibilityFraction })
	set("variantFraction", func() { base.Experiment.VariantFraction = in.Experiment.VariantFraction })
	set("conversionLatencyDays", func() { base.Experiment.ConversionLatencyDays = in.Experiment.ConversionLatencyDays })
	set("decisionLatencyDays", func() { base.Experiment.DecisionLatencyDays = in.Experiment.DecisionLatencyDays })
	if iv := sf.interval(cmd); iv != nil {
		base.Prior.Interval = iv
	}
	return base
}

// interval returns the credible interval given on the command line, if any.
func (sf *scenarioFlags) interval(cmd *cobra.Command) *distribution.Interval {
	f := cmd.Flags()
	if !f.Changed("intervalLow") && !f.Changed("intervalHigh") {
		return nil
	}
	low, _ := f.GetFloat64("intervalLow")
	high, _ := f.GetFloat64("intervalHigh")
	confidence, _ := f.GetFloat64("intervalConfidence")
	return &distribution.Interval{Low: low, High: high, Confidence: confidence}
}

// load resolves the scenario file and inline flags into one document. The
// result is not yet validated; each command checks the parts it needs.
func (sf *scenarioFlags) load(cmd *cobra.Command) (scenario.File, error) {
	var file scenario.File
	if sf.path != "" {
		loaded, err := scenario.ReadFile(sf.path)
		if err != nil {
			return scenario.File{}, err
		}
		logging.LogEvent("scenario=%s name=%s", sf.path, loaded.Name)
		file = sf.overlay(cmd, loaded)
	} else {
		file = sf.file
		if iv := sf.interval(cmd); iv != nil {
			file.Prior.Interval = iv
		}
	}
	if DebugEnabled() {
		pp.Fprintln(cmd.ErrOrStderr(), file)
	}
	return file, nil
}
