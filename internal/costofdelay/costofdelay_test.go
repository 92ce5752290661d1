package costofdelay

import (
	"math"
	"testing"

	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/experiment"
	"pgregory.net/rapid"
)

func TestComputeActDefault(t *testing.T) {
	in := decision.Inputs{K: 365000, Threshold: 0.01, BaselineRate: 0.1}
	d := experiment.Design{DailyTraffic: 1000, TestDurationDays: 14, EligibilityFraction: 1, VariantFraction: 0.5, DecisionLatencyDays: 3}
	res := Compute(0.03, in, d)
	if res.DefaultDecision != decision.Act {
		t.Fatalf("default = %s", res.DefaultDecision)
	}
	// annual = 365000*0.02 = 7300; daily = 20
	if math.Abs(res.DailyValue-20) > 1e-9 {
		t.Fatalf("daily = %v, want 20", res.DailyValue)
	}
	if math.Abs(res.TestPeriodCost-140) > 1e-9 {
		t.Fatalf("test period cost = %v, want 140", res.TestPeriodCost)
	}
	if math.Abs(res.LatencyCost-60) > 1e-9 {
		t.Fatalf("latency cost = %v, want 60", res.LatencyCost)
	}
	if math.Abs(res.Value-200) > 1e-9 {
		t.Fatalf("value = %v, want 200", res.Value)
	}
}

func TestComputeAtThresholdIsFree(t *testing.T) {
	res := Compute(0.01, decision.Inputs{K: 1e6, Threshold: 0.01, BaselineRate: 0.1}, experiment.Design{TestDurationDays: 30, VariantFraction: 0.5})
	if res.Value != 0 || res.DefaultDecision != decision.Act {
		t.Fatalf("expected zero cost and act, got %+v", res)
	}
}

func TestDefaultDecisionAgreesWithDefaultFor(t *testing.T) {
	in := decision.Inputs{K: 1e6, Threshold: 0.01, BaselineRate: 0.1}
	d := experiment.Design{TestDurationDays: 30, VariantFraction: 0.5, DecisionLatencyDays: 5}
	for _, mean := range []float64{-0.02, 0.0099, 0.01, 0.0101, 0.05} {
		res := Compute(mean, in, d)
		if want := decision.DefaultFor(mean, in.Threshold); res.DefaultDecision != want {
			t.Fatalf("mean %v: decision %s, want %s", mean, res.DefaultDecision, want)
		}
	}
}

func TestZeroWheneverExpectedValueIsNotPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threshold := rapid.Float64Range(-0.5, 0.5).Draw(rt, "threshold")
		mean := threshold - rapid.Float64Range(0, 0.5).Draw(rt, "gap")
		d := experiment.Design{
			TestDurationDays:    rapid.IntRange(1, 365).Draw(rt, "days"),
			VariantFraction:     rapid.Float64Range(0.01, 0.99).Draw(rt, "variant"),
			DecisionLatencyDays: rapid.Float64Range(0, 60).Draw(rt, "latency"),
		}
		res := Compute(mean, decision.Inputs{K: rapid.Float64Range(1, 1e8).Draw(rt, "k"), Threshold: threshold, BaselineRate: 0.1}, d)
		if res.Value != 0 {
			rt.Fatalf("cost of delay %v on a defer default", res.Value)
		}
	})
}
