// internal/evpi/evpi.go
// Package evpi computes the expected value of perfect information about the
// lift: what it is worth to learn the true lift exactly before deciding.
package evpi

import (
	"context"
	"math"

	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/metrics"
)

// Method names how a result was obtained.
type Method string

const (
	// ClosedForm is the Normal-prior formula.
	ClosedForm Method = "closed-form"
	// MonteCarlo is the simulation over feasible draws.
	MonteCarlo Method = "monte-carlo"
)

// Result is the expected value of perfect information.
type Result struct {
	Value                      float64           `json:"value"`
	DefaultDecision            decision.Decision `json:"defaultDecision"`
	ProbabilityClearsThreshold float64           `json:"probabilityClearsThreshold"`
	// FeasibleMass is the prior probability of the feasible lift range. The
	// closed form does not truncate the prior, so a value below 1 shows how
	// much infeasible mass it includes.
	FeasibleMass    float64 `json:"feasibleMass"`
	Method          Method  `json:"method"`
	SamplesUsed     int     `json:"samplesUsed,omitempty"`
	SamplesRejected int     `json:"samplesRejected,omitempty"`
	Shortfall       int     `json:"shortfall,omitempty"`
	StandardError   float64 `json:"standardError,omitempty"`
}

// Compute evaluates EVPI in closed form for a Normal prior. A point-mass prior
// (Sigma == 0) carries no uncertainty and is worth nothing to resolve.
func Compute(prior distribution.Normal, in decision.Inputs) Result {
	res := Result{
		DefaultDecision: decision.DefaultFor(prior.Mu, in.Threshold),
		Method:          ClosedForm,
	}
	lo, hi := decision.FeasibleRange(in.BaselineRate)
	res.FeasibleMass = distribution.MassBetween(prior, lo, hi)
	if prior.Degenerate() {
		res.ProbabilityClearsThreshold = decision.ProbabilityAbove(prior.Mu, 0, in.Threshold)
		return res
	}
	res.ProbabilityClearsThreshold = decision.ProbabilityAbove(prior.Mu, prior.Sigma, in.Threshold)
	res.Value = decision.ExpectedGain(prior.Mu, prior.Sigma, in.Threshold, in.K)
	return res
}

// Simulate estimates EVPI for any prior by averaging, over feasible draws,
// the value of deciding with the true lift known minus the value of the
// default decision.
func Simulate(ctx context.Context, prior distribution.Prior, in decision.Inputs, opts decision.Options) (Result, error) {
	opts, err := opts.WithDefaults()
	if err != nil {
		return Result{}, err
	}
	def := decision.DefaultFor(prior.Mean(), in.Threshold)
	lo, hi := decision.FeasibleRange(in.BaselineRate)
	res := Result{
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - prior.Cumulative(in.Threshold),
		FeasibleMass:               distribution.MassBetween(prior, lo, hi),
		Method:                     MonteCarlo,
	}

	sampler := decision.NewSampler(prior, in.BaselineRate, opts.Samples, opts.AttemptMultiplier, opts.Rand)
	var gain metrics.RunningStat
	for sampler.Accepted() < opts.Samples {
		lift, ok, err := sampler.Next(ctx)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		perfect := math.Max(0, in.K*(lift-in.Threshold))
		gain.Add(perfect - decision.Realized(def, in.K, lift, in.Threshold))
	}

	res.SamplesUsed = sampler.Accepted()
	res.SamplesRejected = sampler.Rejected()
	res.Shortfall = opts.Samples - res.SamplesUsed
	if res.SamplesUsed == 0 {
		return res, nil
	}
	res.Value = math.Max(0, gain.Mean)
	res.StandardError = gain.StandardError()
	return res, nil
}
