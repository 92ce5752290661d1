// internal/netvalue/netvalue.go
// Package netvalue values running an experiment end to end in one simulation:
// the test period, the wait for a decision and the rest of the year under the
// decision the test leads to, against a year under the default decision.
package netvalue

import (
	"context"
	"math"

	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/metrics"
)

// Timing splits the year into non-overlapping periods.
type Timing struct {
	TestFraction      float64 `json:"testFraction"`
	LatencyFraction   float64 `json:"latencyFraction"`
	RemainingFraction float64 `json:"remainingFraction"`
}

// TimingFor derives the year fractions for a design. The test period is
// capped at one year and latency takes only what the test leaves, so the
// three fractions always sum to one.
func TimingFor(d experiment.Design) Timing {
	test := math.Min(1, float64(d.TestDurationDays)/decision.DaysPerYear)
	latency := math.Min(1-test, d.DecisionLatencyDays/decision.DaysPerYear)
	return Timing{
		TestFraction:      test,
		LatencyFraction:   latency,
		RemainingFraction: math.Max(0, 1-test-latency),
	}
}

// Result is the net value of running the experiment.
type Result struct {
	Value float64 `json:"value"`
	// RawValue is the unclamped difference of the two averages.
	RawValue                   float64           `json:"rawValue"`
	WithTest                   float64           `json:"withTest"`
	WithoutTest                float64           `json:"withoutTest"`
	Timing                     Timing            `json:"timing"`
	DefaultDecision            decision.Decision `json:"defaultDecision"`
	ProbabilityClearsThreshold float64           `json:"probabilityClearsThreshold"`
	ProbabilityDecisionChanges float64           `json:"probabilityDecisionChanges"`
	StandardErrorOfLift        float64           `json:"standardErrorOfLift"`
	SamplesUsed                int               `json:"samplesUsed"`
	SamplesRejected            int               `json:"samplesRejected"`
	Shortfall                  int               `json:"shortfall,omitempty"`
	StandardError              float64           `json:"standardError,omitempty"`
}

// RejectionRate is the fraction of attempted draws rejected as infeasible.
func (r Result) RejectionRate() float64 {
	attempts := r.SamplesUsed + r.SamplesRejected
	if attempts == 0 {
		return 0
	}
	return float64(r.SamplesRejected) / float64(attempts)
}

// Simulate runs the timing-aware simulation. Each feasible draw of the true
// lift is valued twice: a full year under the default decision, and the
// test/latency/post-decision split with the posterior-mean decision applied
// after the test. Nobody is treated while the decision is pending.
func Simulate(ctx context.Context, prior distribution.Prior, in decision.Inputs, d experiment.Design, opts decision.Options) (Result, error) {
	opts, err := opts.WithDefaults()
	if err != nil {
		return Result{}, err
	}
	sizes := d.SampleSizes()
	se, err := decision.StandardError(in.BaselineRate, sizes.Control, sizes.Variant)
	if err != nil {
		return Result{}, err
	}

	def := decision.DefaultFor(prior.Mean(), in.Threshold)
	timing := TimingFor(d)
	res := Result{
		Timing:                     timing,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - prior.Cumulative(in.Threshold),
		StandardErrorOfLift:        se,
	}

	sampler := decision.NewSampler(prior, in.BaselineRate, opts.Samples, opts.AttemptMultiplier, opts.Rand)
	posterior := decision.NewPosterior(prior, se, in.BaselineRate, opts.GridPoints)
	var with, without, diff metrics.RunningStat
	var changed metrics.Counter
	for sampler.Accepted() < opts.Samples {
		lift, ok, err := sampler.Next(ctx)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		annual := in.K * (lift - in.Threshold)
		baseline := decision.Realized(def, in.K, lift, in.Threshold)

		lhat := lift + se*distribution.StandardNormal(sampler.Rand())
		post := posterior.Decide(lhat, in.Threshold)
		changed.Observe(post != def)
		tested := d.VariantFraction * annual * timing.TestFraction
		tested += decision.Realized(post, in.K, lift, in.Threshold) * timing.RemainingFraction

		with.Add(tested)
		without.Add(baseline)
		diff.Add(tested - baseline)
	}

	res.SamplesUsed = sampler.Accepted()
	res.SamplesRejected = sampler.Rejected()
	res.Shortfall = opts.Samples - res.SamplesUsed
	if res.SamplesUsed == 0 {
		return res, nil
	}
	res.WithTest = with.Mean
	res.WithoutTest = without.Mean
	res.RawValue = with.Mean - without.Mean
	res.Value = math.Max(0, res.RawValue)
	res.StandardError = diff.StandardError()
	res.ProbabilityDecisionChanges = changed.Rate()
	return res, nil
}
