// internal/costofdelay/costofdelay.go
// Package costofdelay prices the time spent testing and deciding when the
// decision without a test would already be to ship.
package costofdelay

import (
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/experiment"
)

// Result is the cost of delaying an "act" decision until a test concludes.
type Result struct {
	Value           float64           `json:"value"`
	DefaultDecision decision.Decision `json:"defaultDecision"`
	AnnualValue     float64           `json:"annualValue"`
	DailyValue      float64           `json:"dailyValue"`
	TestPeriodCost  float64           `json:"testPeriodCost"`
	LatencyCost     float64           `json:"latencyCost"`
}

// Compute returns the value foregone by testing instead of shipping now.
// During the test only the variant arm gets the change, so the control share
// of daily value is lost; during decision latency all of it is lost. When the
// expected annual value is not positive nothing is lost and the cost is
// exactly zero, even at the threshold where the default is still to act.
func Compute(priorMean float64, in decision.Inputs, d experiment.Design) Result {
	annual := in.K * (priorMean - in.Threshold)
	if annual <= 0 {
		return Result{DefaultDecision: decision.DefaultFor(priorMean, in.Threshold), AnnualValue: annual}
	}
	daily := annual / decision.DaysPerYear
	res := Result{
		DefaultDecision: decision.Act,
		AnnualValue:     annual,
		DailyValue:      daily,
		TestPeriodCost:  (1 - d.VariantFraction) * daily * float64(d.TestDurationDays),
		LatencyCost:     daily * d.DecisionLatencyDays,
	}
	res.Value = res.TestPeriodCost + res.LatencyCost
	return res
}
