package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/costofdelay"
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/experiment"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{997.3557, "$997.36"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-50000, "-$50,000.00"},
		{100, "$100.00"},
		{999999.999, "$1,000,000.00"},
		{-0.004, "$0.00"},
		{12345678901.5, "$12,345,678,901.50"},
	}
	for _, tc := range cases {
		if got := Money(tc.in); got != tc.want {
			t.Fatalf("Money(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountAndPercent(t *testing.T) {
	if got := Count(14000); got != "14,000" {
		t.Fatalf("Count = %q", got)
	}
	if got := Count(-1500); got != "-1,500" {
		t.Fatalf("Count = %q", got)
	}
	if got := Count(999); got != "999" {
		t.Fatalf("Count = %q", got)
	}
	if got := Count(1234567); got != "1,234,567" {
		t.Fatalf("Count = %q", got)
	}
	if got := Percent(0.0525); got != "5.25%" {
		t.Fatalf("Percent = %q", got)
	}
}

func sampleReport(t *testing.T) analysis.Report {
	t.Helper()
	sc := analysis.Scenario{
		Name:   "checkout",
		Inputs: decision.Inputs{K: 50000, Threshold: 0, BaselineRate: 0.05},
		Prior:  distribution.Normal{Mu: 0, Sigma: 0.05},
		Design: experiment.Design{DailyTraffic: 1000, TestDurationDays: 14, EligibilityFraction: 1, VariantFraction: 0.5, DecisionLatencyDays: 3},
	}
	rep, err := analysis.Run(context.Background(), sc, analysis.Options{Samples: 500, Seed: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rep
}

func TestTextContainsEverySection(t *testing.T) {
	color.NoColor = true
	rep := sampleReport(t)
	rep.Advisories = append(rep.Advisories, analysis.InfeasibleAdvisory)

	var buf bytes.Buffer
	if err := Text(&buf, rep); err != nil {
		t.Fatalf("Text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"checkout",
		"Sample sizes",
		"14,000",
		"Expected value of perfect information",
		"$997.36",
		"Expected value of sample information",
		"Cost of delay",
		"Net value of testing",
		"Advisories",
		"infeasible",
		"seed 7",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestAdvisoriesWrap(t *testing.T) {
	color.NoColor = true
	long := strings.Repeat("word ", 40)
	out := Advisories([]string{long})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected the advisory to wrap, got %d lines", len(lines))
	}
	for _, line := range lines[1:] {
		if len(line) > advisoryWidth+2 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
	if Advisories(nil) != "" {
		t.Fatal("no advisories should render nothing")
	}
}

func TestCostOfDelayDeferOmitsBreakdown(t *testing.T) {
	out := CostOfDelay(costofdelay.Result{DefaultDecision: decision.Defer})
	if strings.Contains(out, "Daily value") {
		t.Fatalf("defer should not show the breakdown:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	rep := sampleReport(t)
	var buf bytes.Buffer
	if err := JSON(&buf, rep); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"evpi", "evsi", "costOfDelay", "netValue", "prior", "sampleSizes"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q", key)
		}
	}
}
