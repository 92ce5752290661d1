// internal/decision/decision.go
// Package decision holds the decision rule shared by every value-of-information
// calculator: the act/defer choice, the closed-form value of deciding with
// Normal uncertainty, the experiment's measurement noise and the posterior
// mean used after observing an estimate.
package decision

import (
	"math"

	"github.com/mwiater/voi/internal/validate"
	"gonum.org/v1/gonum/stat/distuv"
)

// DaysPerYear converts annual values into daily ones.
const DaysPerYear = 365.0

// Decision is the action taken on the change under consideration.
type Decision string

const (
	// Act ships the change.
	Act Decision = "act"
	// Defer keeps the status quo.
	Defer Decision = "defer"
)

// DefaultFor returns the decision made on expected lift alone.
func DefaultFor(meanLift, threshold float64) Decision {
	if meanLift >= threshold {
		return Act
	}
	return Defer
}

// Inputs are the economic parameters of the decision.
type Inputs struct {
	// K is the annual dollar value of one unit of relative lift.
	K float64 `json:"k" yaml:"k" validate:"finite,gt=0"`
	// Threshold is the minimum lift at which acting is worthwhile.
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"finite"`
	// BaselineRate is the control conversion rate, in (0, 1).
	BaselineRate float64 `json:"baselineConversionRate" yaml:"baselineConversionRate" validate:"finite,gt=0,lt=1"`
}

// Validate checks the ranges documented on each field.
func (in Inputs) Validate() error {
	return validate.Struct("decision", in)
}

// Realized is the annual value earned by d when the true lift is lift.
func Realized(d Decision, k, lift, threshold float64) float64 {
	if d == Act {
		return k * (lift - threshold)
	}
	return 0
}

// ExpectedGain returns E[max(K(L-T), 0)] - max(K(mu-T), 0) for L ~ N(mu, sigma):
// the value of learning L before deciding. It is K*sigma times the unit normal
// loss at |z|, which is symmetric in the act and defer cases.
func ExpectedGain(mu, sigma, threshold, k float64) float64 {
	if sigma <= 0 {
		return 0
	}
	z := math.Abs((threshold - mu) / sigma)
	loss := distuv.UnitNormal.Prob(z) - z*(1-distuv.UnitNormal.CDF(z))
	return math.Max(0, k*sigma*loss)
}

// ProbabilityAbove returns P(L >= threshold) for L ~ N(mu, sigma). A zero
// sigma is a point mass and yields exactly 0 or 1.
func ProbabilityAbove(mu, sigma, threshold float64) float64 {
	if sigma <= 0 {
		if mu >= threshold {
			return 1
		}
		return 0
	}
	return 1 - distuv.UnitNormal.CDF((threshold-mu)/sigma)
}

// StandardError is the delta-method standard error of the measured relative
// lift for a two-arm test at the given baseline rate.
func StandardError(baselineRate float64, nControl, nVariant int) (float64, error) {
	if err := validate.Value("decision.baselineConversionRate", baselineRate, "finite,gt=0,lt=1"); err != nil {
		return 0, err
	}
	if nControl <= 0 {
		return 0, validate.Errorf("samples.control", "must be positive, got %d", nControl)
	}
	if nVariant <= 0 {
		return 0, validate.Errorf("samples.variant", "must be positive, got %d", nVariant)
	}
	v := (1 - baselineRate) / baselineRate * (1/float64(nControl) + 1/float64(nVariant))
	return math.Sqrt(v), nil
}

// ShrinkageWeight is the weight the Normal-Normal update puts on the observed
// estimate.
func ShrinkageWeight(priorSD, se float64) float64 {
	if priorSD <= 0 {
		return 0
	}
	if se <= 0 {
		return 1
	}
	v := priorSD * priorSD
	return v / (v + se*se)
}

// PreposteriorSD is the prior spread of the posterior mean before data is
// seen: the data weight times the marginal spread of the estimate,
// w*sqrt(sigma^2 + se^2) = sigma^2/sqrt(sigma^2 + se^2).
func PreposteriorSD(priorSD, se float64) float64 {
	if priorSD <= 0 {
		return 0
	}
	if se <= 0 {
		return priorSD
	}
	precision := 1/(priorSD*priorSD) + 1/(se*se)
	weight := (1 / (se * se)) / precision
	return weight * math.Sqrt(priorSD*priorSD+se*se)
}

// FeasibleRange is the lift range that keeps the treated conversion rate
// baselineRate*(1+L) inside [0, 1].
func FeasibleRange(baselineRate float64) (lo, hi float64) {
	return -1, 1/baselineRate - 1
}
