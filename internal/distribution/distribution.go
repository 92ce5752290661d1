// internal/distribution/distribution.go
// Package distribution models prior beliefs about the true relative lift.
package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mwiater/voi/internal/validate"
	"gonum.org/v1/gonum/stat/distuv"
)

// Kind names a prior family.
type Kind string

const (
	// KindNormal is a Normal(location, scale) prior.
	KindNormal Kind = "normal"
	// KindStudentT is a location-scale Student-t prior.
	KindStudentT Kind = "student-t"
	// KindUniform is a Uniform(low, high) prior.
	KindUniform Kind = "uniform"
)

// maxDrawRetries bounds the inverse-CDF retries for a single Student-t draw.
const maxDrawRetries = 32

// Prior is a belief about the relative lift L. The set of implementations is
// closed to this package; every new family must provide all methods before it
// compiles.
type Prior interface {
	Kind() Kind
	// Density returns the probability density at x.
	Density(x float64) float64
	// Cumulative returns P(L <= x).
	Cumulative(x float64) float64
	// Mean returns the center used for the no-test decision.
	Mean() float64
	// Quantile returns the x with Cumulative(x) = p for p in [0, 1].
	Quantile(p float64) float64
	// Draw samples one lift using r.
	Draw(r *rand.Rand) float64

	sealed()
}

// Normal is a Normal prior. Sigma == 0 is a point mass at Mu; NewNormal never
// returns one, but calculators accept it as a literal.
type Normal struct {
	Mu    float64 `json:"location" validate:"finite"`
	Sigma float64 `json:"scale" validate:"finite,gt=0"`
}

// NewNormal validates and builds a Normal prior.
func NewNormal(mu, sigma float64) (Normal, error) {
	n := Normal{Mu: mu, Sigma: sigma}
	if err := validate.Struct("prior", n); err != nil {
		return Normal{}, err
	}
	return n, nil
}

// Kind implements Prior.
func (n Normal) Kind() Kind { return KindNormal }

// Degenerate reports whether the prior is a point mass.
func (n Normal) Degenerate() bool { return n.Sigma == 0 }

func (n Normal) dist() distuv.Normal { return distuv.Normal{Mu: n.Mu, Sigma: n.Sigma} }

// Density implements Prior.
func (n Normal) Density(x float64) float64 {
	if n.Degenerate() {
		if x == n.Mu {
			return math.Inf(1)
		}
		return 0
	}
	if math.IsInf(x, 0) {
		return 0
	}
	return n.dist().Prob(x)
}

// Cumulative implements Prior.
func (n Normal) Cumulative(x float64) float64 {
	if n.Degenerate() {
		if x >= n.Mu {
			return 1
		}
		return 0
	}
	return n.dist().CDF(x)
}

// Mean implements Prior.
func (n Normal) Mean() float64 { return n.Mu }

// Quantile implements Prior.
func (n Normal) Quantile(p float64) float64 {
	if n.Degenerate() {
		return n.Mu
	}
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return n.dist().Quantile(p)
}

// Draw implements Prior with a Box-Muller transform.
func (n Normal) Draw(r *rand.Rand) float64 {
	if n.Degenerate() {
		return n.Mu
	}
	return n.Mu + n.Sigma*StandardNormal(r)
}

func (Normal) sealed() {}

// StandardNormal draws a N(0, 1) variate. A zero uniform is clamped to the
// smallest positive float64 so the logarithm stays finite.
func StandardNormal(r *rand.Rand) float64 {
	u1 := r.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	u2 := r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// StudentT is a location-scale Student-t prior. Sigma is a scale parameter,
// not a standard deviation.
type StudentT struct {
	Mu    float64 `json:"location" validate:"finite"`
	Sigma float64 `json:"scale" validate:"finite,gt=0"`
	Nu    float64 `json:"degreesOfFreedom" validate:"finite,gte=1"`
}

// NewStudentT validates and builds a Student-t prior.
func NewStudentT(mu, sigma, nu float64) (StudentT, error) {
	t := StudentT{Mu: mu, Sigma: sigma, Nu: nu}
	if err := validate.Struct("prior", t); err != nil {
		return StudentT{}, err
	}
	return t, nil
}

// Kind implements Prior.
func (t StudentT) Kind() Kind { return KindStudentT }

func (t StudentT) dist() distuv.StudentsT {
	return distuv.StudentsT{Mu: t.Mu, Sigma: t.Sigma, Nu: t.Nu}
}

// Density implements Prior.
func (t StudentT) Density(x float64) float64 {
	if math.IsInf(x, 0) {
		return 0
	}
	return t.dist().Prob(x)
}

// Cumulative implements Prior.
func (t StudentT) Cumulative(x float64) float64 {
	switch {
	case math.IsInf(x, -1):
		return 0
	case math.IsInf(x, 1):
		return 1
	}
	return t.dist().CDF(x)
}

// Mean returns the location: the mean when Nu > 1 and the median otherwise.
func (t StudentT) Mean() float64 { return t.Mu }

// Quantile implements Prior.
func (t StudentT) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return t.dist().Quantile(p)
}

// Draw implements Prior by inverse-CDF sampling. Tail quantiles that come back
// non-finite are discarded and redrawn.
func (t StudentT) Draw(r *rand.Rand) float64 {
	d := t.dist()
	for i := 0; i < maxDrawRetries; i++ {
		u := r.Float64()
		if u == 0 {
			continue
		}
		x := d.Quantile(u)
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return x
		}
	}
	return t.Mu
}

// Warnings lists advisories for degrees of freedom where moments are undefined.
func (t StudentT) Warnings() []string {
	switch {
	case t.Nu <= 1:
		return []string{fmt.Sprintf("student-t prior with %g degrees of freedom has no mean; its location is used as the decision center", t.Nu)}
	case t.Nu <= 2:
		return []string{fmt.Sprintf("student-t prior with %g degrees of freedom has infinite variance", t.Nu)}
	}
	return nil
}

func (StudentT) sealed() {}

// Uniform is a flat prior on [Low, High].
type Uniform struct {
	Low  float64 `json:"low" validate:"finite"`
	High float64 `json:"high" validate:"finite,gtfield=Low"`
}

// NewUniform validates and builds a Uniform prior.
func NewUniform(low, high float64) (Uniform, error) {
	u := Uniform{Low: low, High: high}
	if err := validate.Struct("prior", u); err != nil {
		return Uniform{}, err
	}
	return u, nil
}

// Kind implements Prior.
func (u Uniform) Kind() Kind { return KindUniform }

// Density implements Prior.
func (u Uniform) Density(x float64) float64 {
	if x < u.Low || x > u.High {
		return 0
	}
	return 1 / (u.High - u.Low)
}

// Cumulative implements Prior.
func (u Uniform) Cumulative(x float64) float64 {
	switch {
	case x <= u.Low:
		return 0
	case x >= u.High:
		return 1
	}
	return (x - u.Low) / (u.High - u.Low)
}

// Mean implements Prior.
func (u Uniform) Mean() float64 { return (u.Low + u.High) / 2 }

// Quantile implements Prior.
func (u Uniform) Quantile(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	return u.Low + p*(u.High-u.Low)
}

// Draw implements Prior.
func (u Uniform) Draw(r *rand.Rand) float64 {
	return u.Low + r.Float64()*(u.High-u.Low)
}

func (Uniform) sealed() {}

// Warnings returns advisories about a prior's parameters, if any.
func Warnings(p Prior) []string {
	switch v := p.(type) {
	case StudentT:
		return v.Warnings()
	case Normal, Uniform:
		return nil
	default:
		panic(fmt.Sprintf("distribution: unhandled prior %T", p))
	}
}

// Describe renders a prior as a short human-readable label.
func Describe(p Prior) string {
	switch v := p.(type) {
	case Normal:
		return fmt.Sprintf("Normal(location=%.4g, scale=%.4g)", v.Mu, v.Sigma)
	case StudentT:
		return fmt.Sprintf("Student-t(location=%.4g, scale=%.4g, df=%.4g)", v.Mu, v.Sigma, v.Nu)
	case Uniform:
		return fmt.Sprintf("Uniform(low=%.4g, high=%.4g)", v.Low, v.High)
	default:
		panic(fmt.Sprintf("distribution: unhandled prior %T", p))
	}
}

// MassBetween returns P(lo <= L <= hi).
func MassBetween(p Prior, lo, hi float64) float64 {
	if hi < lo {
		return 0
	}
	m := p.Cumulative(hi) - p.Cumulative(lo)
	return math.Max(0, math.Min(1, m))
}
