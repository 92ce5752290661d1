package decision

import (
	"fmt"
	"math"

	"github.com/mwiater/voi/internal/distribution"
)

const (
	// windowSE is the half-width, in standard errors, of the likelihood window.
	windowSE = 8.0
	// tailMass trims the prior's own support to a finite range.
	tailMass = 1e-12
)

// Posterior computes E[L | L_hat] for a prior observed through Normal noise.
type Posterior struct {
	prior distribution.Prior
	se    float64
	grid  int
	// effective prior support intersected with the feasible range
	lo, hi float64
	// conjugate shortcut for Normal priors
	normal bool
	weight float64
	mu     float64
}

// NewPosterior prepares the posterior-mean rule for measurements with standard
// error se. Normal priors use the conjugate update; other priors use a bounded
// grid of gridPoints.
func NewPosterior(prior distribution.Prior, se, baselineRate float64, gridPoints int) *Posterior {
	p := &Posterior{prior: prior, se: se, grid: gridPoints}
	switch v := prior.(type) {
	case distribution.Normal:
		p.normal = true
		p.weight = ShrinkageWeight(v.Sigma, se)
		p.mu = v.Mu
		return p
	case distribution.StudentT, distribution.Uniform:
	default:
		panic(fmt.Sprintf("decision: unhandled prior %T", prior))
	}
	flo, fhi := FeasibleRange(baselineRate)
	p.lo = math.Max(flo, prior.Quantile(tailMass))
	p.hi = math.Min(fhi, prior.Quantile(1-tailMass))
	if !(p.lo < p.hi) {
		p.lo, p.hi = flo, fhi
	}
	return p
}

// Mean returns the posterior mean of the lift given the observed estimate.
func (p *Posterior) Mean(lhat float64) float64 {
	if p.normal {
		return p.weight*lhat + (1-p.weight)*p.mu
	}
	return p.gridMean(lhat)
}

// Decide applies the posterior-mean decision rule.
func (p *Posterior) Decide(lhat, threshold float64) Decision {
	return DefaultFor(p.Mean(lhat), threshold)
}

// gridMean integrates prior(L) * N(lhat; L, se) over a grid covering the part
// of the prior's support where the likelihood is not negligible.
func (p *Posterior) gridMean(lhat float64) float64 {
	a := math.Max(p.lo, lhat-windowSE*p.se)
	b := math.Min(p.hi, lhat+windowSE*p.se)
	if !(a < b) {
		a, b = p.lo, p.hi
	}
	// Likelihood is normalized against its largest value on [a, b] so tail
	// estimates do not underflow every weight to zero.
	nearest := math.Max(a, math.Min(b, lhat))
	zmin := (lhat - nearest) / p.se
	offset := 0.5 * zmin * zmin

	step := (b - a) / float64(p.grid-1)
	var sumW, sumWL float64
	for i := 0; i < p.grid; i++ {
		l := a + float64(i)*step
		d := p.prior.Density(l)
		if d == 0 {
			continue
		}
		z := (lhat - l) / p.se
		w := d * math.Exp(offset-0.5*z*z)
		sumW += w
		sumWL += w * l
	}
	if sumW == 0 || math.IsNaN(sumW) || math.IsInf(sumW, 0) {
		return p.prior.Mean()
	}
	return sumWL / sumW
}
