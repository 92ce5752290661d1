// internal/analysis/analysis.go
// Package analysis runs every calculator for one scenario and gathers the
// results into a single report.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/mwiater/voi/internal/costofdelay"
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/evpi"
	"github.com/mwiater/voi/internal/evsi"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/logging"
	"github.com/mwiater/voi/internal/netvalue"
	"github.com/mwiater/voi/internal/validate"
	"golang.org/x/sync/errgroup"
)

// DefaultRejectionAdvisory is the rejection rate above which a report warns.
const DefaultRejectionAdvisory = 0.5

// Independent random streams, one per simulation, derived from one seed.
const (
	StreamEVPI uint64 = iota + 1
	StreamEVSI
	StreamNetValue
)

// Scenario is one fully validated calculation request.
type Scenario struct {
	Name     string             `json:"name,omitempty"`
	Inputs   decision.Inputs    `json:"decision"`
	Prior    distribution.Prior `json:"-"`
	Design   experiment.Design  `json:"experiment"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Validate checks every part of the scenario.
func (s Scenario) Validate() error {
	if s.Prior == nil {
		return validate.Errorf("prior", "is required")
	}
	if err := s.Inputs.Validate(); err != nil {
		return err
	}
	if err := s.Design.Validate(); err != nil {
		return err
	}
	sizes := s.Design.SampleSizes()
	if sizes.Control <= 0 || sizes.Variant <= 0 {
		return validate.Errorf("experiment", "yields an empty arm (control=%d, variant=%d); increase traffic, duration or eligibility", sizes.Control, sizes.Variant)
	}
	return nil
}

// Options control the simulations.
type Options struct {
	Samples           int
	AttemptMultiplier int
	GridPoints        int
	// Seed drives every simulation stream; zero derives one from the clock.
	Seed uint64
	// ForceSimulation runs the Monte Carlo EVSI even for Normal priors.
	ForceSimulation bool
	// RejectionAdvisory is the rejection rate above which an advisory is added.
	RejectionAdvisory float64
}

// Report bundles every result for a scenario.
type Report struct {
	Scenario    Scenario               `json:"scenario"`
	Prior       distribution.Spec      `json:"prior"`
	SampleSizes experiment.SampleSizes `json:"sampleSizes"`
	EVPI        evpi.Result            `json:"evpi"`
	EVSI        evsi.Result            `json:"evsi"`
	CostOfDelay costofdelay.Result     `json:"costOfDelay"`
	NetValue    netvalue.Result        `json:"netValue"`
	// DaysUntilDecision is test duration plus conversion and decision latency.
	DaysUntilDecision float64  `json:"daysUntilDecision"`
	Seed              uint64   `json:"seed"`
	Samples           int      `json:"samples"`
	Advisories        []string `json:"advisories,omitempty"`
	Elapsed           string   `json:"elapsed"`
}

// StreamOptions returns simulation options drawing from the given stream of a seed.
func StreamOptions(seed, stream uint64) decision.Options {
	return decision.Options{Rand: decision.NewRand(seed, stream)}
}

// Resolved fills in a clock-derived seed and the default advisory threshold.
func (o Options) Resolved() Options {
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.RejectionAdvisory == 0 {
		o.RejectionAdvisory = DefaultRejectionAdvisory
	}
	return o
}

// Simulation returns the options for one simulation stream.
func (o Options) Simulation(stream uint64) decision.Options {
	so := StreamOptions(o.Seed, stream)
	so.Samples = o.Samples
	so.AttemptMultiplier = o.AttemptMultiplier
	so.GridPoints = o.GridPoints
	return so
}

// Run computes the full report. The Monte Carlo pieces run concurrently, each
// on its own stream, so a fixed seed reproduces the report exactly.
func Run(ctx context.Context, sc Scenario, opts Options) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}
	opts = opts.Resolved()
	started := time.Now()
	sizes := sc.Design.SampleSizes()
	rep := Report{
		Scenario:          sc,
		Prior:             distribution.SpecOf(sc.Prior),
		SampleSizes:       sizes,
		CostOfDelay:       costofdelay.Compute(sc.Prior.Mean(), sc.Inputs, sc.Design),
		DaysUntilDecision: sc.Design.DaysUntilDecision(),
		Seed:              opts.Seed,
	}

	simOpts := opts.Simulation
	resolved, err := simOpts(0).WithDefaults()
	if err != nil {
		return Report{}, err
	}
	rep.Samples = resolved.Samples

	normal, isNormal := sc.Prior.(distribution.Normal)
	if isNormal {
		rep.EVPI = evpi.Compute(normal, sc.Inputs)
	}
	if isNormal && !opts.ForceSimulation {
		rep.EVSI, err = evsi.FastPath(normal, sc.Inputs, sizes)
		if err != nil {
			return Report{}, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if !isNormal {
		g.Go(func() error {
			res, err := evpi.Simulate(gctx, sc.Prior, sc.Inputs, simOpts(StreamEVPI))
			if err != nil {
				return fmt.Errorf("simulate EVPI: %w", err)
			}
			rep.EVPI = res
			return nil
		})
	}
	if !isNormal || opts.ForceSimulation {
		g.Go(func() error {
			res, err := evsi.Simulate(gctx, sc.Prior, sc.Inputs, sizes, simOpts(StreamEVSI))
			if err != nil {
				return fmt.Errorf("simulate EVSI: %w", err)
			}
			rep.EVSI = res
			return nil
		})
	}
	g.Go(func() error {
		res, err := netvalue.Simulate(gctx, sc.Prior, sc.Inputs, sc.Design, simOpts(StreamNetValue))
		if err != nil {
			return fmt.Errorf("simulate net value: %w", err)
		}
		rep.NetValue = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep.Advisories = advisories(sc, rep, opts.RejectionAdvisory)
	rep.Elapsed = time.Since(started).Round(time.Millisecond).String()
	logging.LogCalculation("analysis", 0, map[string]any{
		"scenario": sc.Name,
		"prior":    distribution.Describe(sc.Prior),
		"evpi":     rep.EVPI.Value,
		"evsi":     rep.EVSI.Value,
		"cod":      rep.CostOfDelay.Value,
		"net":      rep.NetValue.Value,
		"seed":     opts.Seed,
		"elapsed":  rep.Elapsed,
	})
	return rep, nil
}

// InfeasibleAdvisory is shown when most simulated lifts were infeasible.
const InfeasibleAdvisory = "most simulated outcomes were infeasible for this baseline rate"

func advisories(sc Scenario, rep Report, threshold float64) []string {
	out := append([]string(nil), sc.Warnings...)
	out = append(out, distribution.Warnings(sc.Prior)...)

	worst := rep.NetValue.RejectionRate()
	if r := rep.EVSI.RejectionRate(); r > worst {
		worst = r
	}
	if worst > threshold {
		out = append(out, fmt.Sprintf("%s (%.0f%% of draws rejected)", InfeasibleAdvisory, worst*100))
	}
	if short := max(rep.EVSI.Shortfall, rep.NetValue.Shortfall); short > 0 {
		out = append(out, fmt.Sprintf("simulation hit its attempt cap %d samples short of the %d requested", short, rep.Samples))
	}
	if rep.EVPI.Method == evpi.ClosedForm && rep.EVPI.FeasibleMass < 0.999 {
		out = append(out, fmt.Sprintf("%.1f%% of the prior lies outside the feasible lift range; closed-form values include it", (1-rep.EVPI.FeasibleMass)*100))
	}
	if rep.SampleSizes.Total > 0 && rep.NetValue.Timing.RemainingFraction == 0 {
		out = append(out, "test and decision latency consume the whole year; no post-decision value remains")
	}
	return out
}
