// internal/report/report.go
// Package report renders analysis results as styled text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/costofdelay"
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/evpi"
	"github.com/mwiater/voi/internal/evsi"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/netvalue"
)

const (
	labelWidth    = 30
	advisoryWidth = 76
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(labelWidth)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	wrapStyle    = lipgloss.NewStyle().Width(advisoryWidth)

	advisoryColor = color.New(color.FgYellow).SprintFunc()
)

type row struct {
	label string
	value string
}

func section(title string, rows []row) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(title))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteByte('\n')
	}
	return b.String()
}

// Inputs renders the scenario being evaluated.
func Inputs(sc analysis.Scenario) string {
	rows := []row{
		{"Prior", distribution.Describe(sc.Prior)},
		{"Value per unit lift (K)", Money(sc.Inputs.K) + "/yr"},
		{"Threshold", Percent(sc.Inputs.Threshold)},
		{"Baseline conversion rate", Percent(sc.Inputs.BaselineRate)},
		{"Daily traffic", fmt.Sprintf("%g", sc.Design.DailyTraffic)},
		{"Test duration", fmt.Sprintf("%d days", sc.Design.TestDurationDays)},
		{"Eligible / variant share", fmt.Sprintf("%s / %s", Percent(sc.Design.EligibilityFraction), Percent(sc.Design.VariantFraction))},
	}
	if sc.Design.ConversionLatencyDays > 0 || sc.Design.DecisionLatencyDays > 0 {
		rows = append(rows, row{"Conversion / decision latency", fmt.Sprintf("%g / %g days", sc.Design.ConversionLatencyDays, sc.Design.DecisionLatencyDays)})
	}
	return section("Inputs", rows)
}

// SampleSizes renders the per-arm counts and the decision timeline.
func SampleSizes(s experiment.SampleSizes, daysUntilDecision float64) string {
	rows := []row{
		{"Total", Count(s.Total)},
		{"Control", Count(s.Control)},
		{"Variant", Count(s.Variant)},
	}
	if daysUntilDecision > 0 {
		rows = append(rows, row{"Days until decision", fmt.Sprintf("%g", daysUntilDecision)})
	}
	return section("Sample sizes", rows)
}

// EVPI renders the value of perfect information.
func EVPI(r evpi.Result) string {
	rows := []row{
		{"EVPI", Money(r.Value)},
		{"Default decision", string(r.DefaultDecision)},
		{"P(lift >= threshold)", Percent(r.ProbabilityClearsThreshold)},
		{"Method", string(r.Method)},
	}
	if r.Method == evpi.ClosedForm {
		rows = append(rows, row{"Feasible prior mass", Percent(r.FeasibleMass)})
	} else {
		rows = append(rows, simulationRows(r.SamplesUsed, r.SamplesRejected, r.StandardError)...)
	}
	return section("Expected value of perfect information", rows)
}

// EVSI renders the value of the planned experiment's information.
func EVSI(r evsi.Result) string {
	rows := []row{
		{"EVSI", Money(r.Value)},
		{"Default decision", string(r.DefaultDecision)},
		{"P(decision changes)", Percent(r.ProbabilityDecisionChanges)},
		{"Standard error of lift", Percent(r.StandardErrorOfLift)},
		{"Method", string(r.Method)},
	}
	if r.Method == evsi.ClosedForm {
		rows = append(rows, row{"Pre-posterior SD", Percent(r.PreposteriorSD)})
	} else {
		rows = append(rows, simulationRows(r.SamplesUsed, r.SamplesRejected, r.StandardError)...)
	}
	return section("Expected value of sample information", rows)
}

// CostOfDelay renders the value foregone by running the test.
func CostOfDelay(r costofdelay.Result) string {
	rows := []row{
		{"Cost of delay", Money(r.Value)},
		{"Default decision", string(r.DefaultDecision)},
	}
	if r.DefaultDecision == decision.Act {
		rows = append(rows,
			row{"Expected annual value", Money(r.AnnualValue)},
			row{"Daily value", Money(r.DailyValue)},
			row{"Lost during test", Money(r.TestPeriodCost)},
			row{"Lost during latency", Money(r.LatencyCost)},
		)
	}
	return section("Cost of delay", rows)
}

// NetValue renders the timing-aware comparison of testing against not testing.
func NetValue(r netvalue.Result) string {
	rows := []row{
		{"Net value of testing", Money(r.Value)},
		{"Unclamped difference", Money(r.RawValue)},
		{"With test", Money(r.WithTest)},
		{"Without test", Money(r.WithoutTest)},
		{"Year split test/latency/rest", fmt.Sprintf("%s / %s / %s", Percent(r.Timing.TestFraction), Percent(r.Timing.LatencyFraction), Percent(r.Timing.RemainingFraction))},
		{"P(decision changes)", Percent(r.ProbabilityDecisionChanges)},
	}
	rows = append(rows, simulationRows(r.SamplesUsed, r.SamplesRejected, r.StandardError)...)
	return section("Net value of testing", rows)
}

func simulationRows(used, rejected int, stdErr float64) []row {
	return []row{
		{"Samples used / rejected", fmt.Sprintf("%s / %s", Count(used), Count(rejected))},
		{"Monte Carlo error", "± " + Money(stdErr)},
	}
}

// Advisories renders warnings in yellow, each wrapped to the report width.
func Advisories(list []string) string {
	if len(list) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("Advisories"))
	b.WriteByte('\n')
	for _, a := range list {
		for _, line := range strings.Split(wrapStyle.Render("! "+a), "\n") {
			b.WriteString("  ")
			b.WriteString(advisoryColor(strings.TrimRight(line, " ")))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Text writes the full report.
func Text(w io.Writer, rep analysis.Report) error {
	title := "Value of information"
	if rep.Scenario.Name != "" {
		title += ": " + rep.Scenario.Name
	}
	parts := []string{
		titleStyle.Render(title) + "\n",
		Inputs(rep.Scenario),
		SampleSizes(rep.SampleSizes, rep.DaysUntilDecision),
		EVPI(rep.EVPI),
		EVSI(rep.EVSI),
		CostOfDelay(rep.CostOfDelay),
		NetValue(rep.NetValue),
	}
	if adv := Advisories(rep.Advisories); adv != "" {
		parts = append(parts, adv)
	}
	parts = append(parts, fmt.Sprintf("seed %d, %d samples, %s\n", rep.Seed, rep.Samples, rep.Elapsed))
	_, err := io.WriteString(w, strings.Join(parts, "\n"))
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
