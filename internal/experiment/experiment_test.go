package experiment

import (
	"errors"
	"math"
	"testing"

	"github.com/mwiater/voi/internal/validate"
	"pgregory.net/rapid"
)

func TestSampleSizesEvenSplit(t *testing.T) {
	d := Design{DailyTraffic: 1000, TestDurationDays: 14, EligibilityFraction: 1.0, VariantFraction: 0.5}
	got := d.SampleSizes()
	want := SampleSizes{Total: 14000, Control: 7000, Variant: 7000}
	if got != want {
		t.Fatalf("SampleSizes() = %+v, want %+v", got, want)
	}
}

func TestSampleSizesFloorsOnce(t *testing.T) {
	d := Design{DailyTraffic: 333.3, TestDurationDays: 3, EligibilityFraction: 0.7, VariantFraction: 0.35}
	got := d.SampleSizes()
	if got.Total != 699 {
		t.Fatalf("total = %d, want 699", got.Total)
	}
	if got.Variant != 244 || got.Control != 455 {
		t.Fatalf("arms = %d/%d, want 455/244", got.Control, got.Variant)
	}
}

func TestSampleSizesArmsSumToTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := Design{
			DailyTraffic:        rapid.Float64Range(0.1, 1e7).Draw(rt, "dailyTraffic"),
			TestDurationDays:    rapid.IntRange(1, 365).Draw(rt, "days"),
			EligibilityFraction: rapid.Float64Range(1e-6, 1).Draw(rt, "eligibility"),
			VariantFraction:     rapid.Float64Range(1e-6, 1-1e-6).Draw(rt, "variant"),
		}
		s := d.SampleSizes()
		want := int(math.Floor(d.DailyTraffic * float64(d.TestDurationDays) * d.EligibilityFraction))
		if s.Total != want {
			rt.Fatalf("total %d, want %d", s.Total, want)
		}
		if s.Control+s.Variant != s.Total {
			rt.Fatalf("control %d + variant %d != total %d", s.Control, s.Variant, s.Total)
		}
		if s.Control < 0 || s.Variant < 0 {
			rt.Fatalf("negative arm in %+v", s)
		}
	})
}

func TestValidate(t *testing.T) {
	good := Design{DailyTraffic: 10, TestDurationDays: 7, EligibilityFraction: 1, VariantFraction: 0.5}
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}
	cases := map[string]func(*Design){
		"traffic":    func(d *Design) { d.DailyTraffic = 0 },
		"duration":   func(d *Design) { d.TestDurationDays = 0 },
		"eligible":   func(d *Design) { d.EligibilityFraction = 1.5 },
		"variant":    func(d *Design) { d.VariantFraction = 1 },
		"conversion": func(d *Design) { d.ConversionLatencyDays = -1 },
		"decision":   func(d *Design) { d.DecisionLatencyDays = -2 },
	}
	for name, mutate := range cases {
		d := good
		mutate(&d)
		if err := d.Validate(); !errors.Is(err, validate.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
}

func TestDaysUntilDecision(t *testing.T) {
	d := Design{TestDurationDays: 14, ConversionLatencyDays: 2, DecisionLatencyDays: 5}
	if got := d.DaysUntilDecision(); got != 21 {
		t.Fatalf("DaysUntilDecision = %v, want 21", got)
	}
}
