// internal/evsi/evsi.go
// Package evsi computes the expected value of sample information: what a
// finite experiment is worth before committing to a decision.
//
// Two paths exist. FastPath is the closed form for Normal priors; Simulate
// works for any prior. Both decide on the posterior mean of the lift, so they
// agree for Normal priors up to Monte Carlo error.
package evsi

import (
	"context"
	"math"

	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/metrics"
)

// Method names how a result was obtained.
type Method string

const (
	// ClosedForm is the Normal conjugate formula.
	ClosedForm Method = "closed-form"
	// MonteCarlo is the simulation path.
	MonteCarlo Method = "monte-carlo"
)

// Result is the expected value of sample information.
type Result struct {
	Value                      float64           `json:"value"`
	DefaultDecision            decision.Decision `json:"defaultDecision"`
	ProbabilityClearsThreshold float64           `json:"probabilityClearsThreshold"`
	ProbabilityDecisionChanges float64           `json:"probabilityDecisionChanges"`
	StandardErrorOfLift        float64           `json:"standardErrorOfLift"`
	PreposteriorSD             float64           `json:"preposteriorSD,omitempty"`
	Method                     Method            `json:"method"`
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

// FastPath evaluates EVSI in closed form for a Normal prior: the EVPI formula
// with the pre-posterior spread of the posterior mean in place of the prior's.
func FastPath(prior distribution.Normal, in decision.Inputs, sizes experiment.SampleSizes) (Result, error) {
	se, err := decision.StandardError(in.BaselineRate, sizes.Control, sizes.Variant)
	if err != nil {
		return Result{}, err
	}
	def := decision.DefaultFor(prior.Mu, in.Threshold)
	pre := decision.PreposteriorSD(prior.Sigma, se)
	res := Result{
		Value:                      decision.ExpectedGain(prior.Mu, pre, in.Threshold, in.K),
		DefaultDecision:            def,
		ProbabilityClearsThreshold: decision.ProbabilityAbove(prior.Mu, prior.Sigma, in.Threshold),
		StandardErrorOfLift:        se,
		PreposteriorSD:             pre,
		Method:                     ClosedForm,
	}
	// The posterior mean is N(mu, pre) before data; the decision flips when
	// it lands on the other side of the threshold.
	above := decision.ProbabilityAbove(prior.Mu, pre, in.Threshold)
	if def == decision.Act {
		res.ProbabilityDecisionChanges = 1 - above
	} else {
		res.ProbabilityDecisionChanges = above
	}
	return res, nil
}

// Simulate estimates EVSI by simulating experiments: draw a feasible true
// lift, draw the experiment's noisy estimate of it, decide on the posterior
// mean and compare the value earned with the value of the default decision.
func Simulate(ctx context.Context, prior distribution.Prior, in decision.Inputs, sizes experiment.SampleSizes, opts decision.Options) (Result, error) {
	opts, err := opts.WithDefaults()
	if err != nil {
		return Result{}, err
	}
	se, err := decision.StandardError(in.BaselineRate, sizes.Control, sizes.Variant)
	if err != nil {
		return Result{}, err
	}

	def := decision.DefaultFor(prior.Mean(), in.Threshold)
	res := Result{
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - prior.Cumulative(in.Threshold),
		StandardErrorOfLift:        se,
		Method:                     MonteCarlo,
	}

	sampler := decision.NewSampler(prior, in.BaselineRate, opts.Samples, opts.AttemptMultiplier, opts.Rand)
	posterior := decision.NewPosterior(prior, se, in.BaselineRate, opts.GridPoints)
	var gain metrics.RunningStat
	var changed metrics.Counter
	for sampler.Accepted() < opts.Samples {
		lift, ok, err := sampler.Next(ctx)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		lhat := lift + se*distribution.StandardNormal(sampler.Rand())
		post := posterior.Decide(lhat, in.Threshold)
		changed.Observe(post != def)
		gain.Add(decision.Realized(post, in.K, lift, in.Threshold) - decision.Realized(def, in.K, lift, in.Threshold))
	}

	res.SamplesUsed = sampler.Accepted()
	res.SamplesRejected = sampler.Rejected()
	res.Shortfall = opts.Samples - res.SamplesUsed
	if res.SamplesUsed == 0 {
		return res, nil
	}
	res.Value = math.Max(0, gain.Mean)
	res.StandardError = gain.StandardError()
	res.ProbabilityDecisionChanges = changed.Rate()
	return res, nil
}
