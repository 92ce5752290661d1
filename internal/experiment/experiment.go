// internal/experiment/experiment.go
// Package experiment describes an A/B test design and derives its per-arm
// sample sizes.
package experiment

import (
	"math"

	"github.com/mwiater/voi/internal/validate"
)

// Design is the plan for running the experiment.
type Design struct {
	DailyTraffic          float64 `json:"dailyTraffic" yaml:"dailyTraffic" validate:"finite,gt=0"`
	TestDurationDays      int     `json:"testDurationDays" yaml:"testDurationDays" validate:"gt=0"`
	EligibilityFraction   float64 `json:"eligibilityFraction" yaml:"eligibilityFraction" validate:"finite,gt=0,lte=1"`
	VariantFraction       float64 `json:"variantFraction" yaml:"variantFraction" validate:"finite,gt=0,lt=1"`
	ConversionLatencyDays float64 `json:"conversionLatencyDays" yaml:"conversionLatencyDays" validate:"finite,gte=0"`
	DecisionLatencyDays   float64 `json:"decisionLatencyDays" yaml:"decisionLatencyDays" validate:"finite,gte=0"`
}

// SampleSizes are the exact per-arm counts a design yields.
type SampleSizes struct {
	Total   int `json:"total"`
	Control int `json:"control"`
	Variant int `json:"variant"`
}

// Validate checks every field's documented range.
func (d Design) Validate() error {
	return validate.Struct("experiment", d)
}

// SampleSizes derives the arm counts. The control arm is the remainder of the
// total so the two arms always sum to it exactly.
func (d Design) SampleSizes() SampleSizes {
	total := int(math.Floor(d.DailyTraffic * float64(d.TestDurationDays) * d.EligibilityFraction))
	variant := int(math.Floor(float64(total) * d.VariantFraction))
	return SampleSizes{
		Total:   total,
		Control: total - variant,
		Variant: variant,
	}
}

// DaysUntilDecision is the calendar time from launch until a decision is
// taken: the test, the wait for late conversions and the decision latency.
func (d Design) DaysUntilDecision() float64 {
	return float64(d.TestDurationDays) + d.ConversionLatencyDays + d.DecisionLatencyDays
}
