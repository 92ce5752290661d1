package distribution

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mwiater/voi/internal/validate"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestUniformBoundaries(t *testing.T) {
	u, err := NewUniform(-0.1, 0.3)
	if err != nil {
		t.Fatalf("NewUniform: %v", err)
	}
	if got := u.Cumulative(-0.1); got != 0 {
		t.Fatalf("cumulative(low) = %v, want 0", got)
	}
	if got := u.Cumulative(0.3); got != 1 {
		t.Fatalf("cumulative(high) = %v, want 1", got)
	}
	if got := u.Cumulative(-5); got != 0 {
		t.Fatalf("cumulative below = %v", got)
	}
	if got := u.Cumulative(5); got != 1 {
		t.Fatalf("cumulative above = %v", got)
	}
	want := 1 / 0.4
	for _, x := range []float64{-0.05, 0, 0.1, 0.29} {
		if got := u.Density(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("density(%v) = %v, want %v", x, got, want)
		}
	}
	for _, x := range []float64{-0.2, 0.31, math.Inf(1), math.Inf(-1)} {
		if got := u.Density(x); got != 0 {
			t.Fatalf("density(%v) = %v, want 0", x, got)
		}
	}
	if got := u.Mean(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("mean = %v", got)
	}
}

func TestUniformDrawStaysInBounds(t *testing.T) {
	u := Uniform{Low: 2, High: 3}
	r := newRand(1)
	for i := 0; i < 10000; i++ {
		x := u.Draw(r)
		if x < 2 || x > 3 {
			t.Fatalf("draw %v out of bounds", x)
		}
	}
}

func TestNormalMatchesClosedForm(t *testing.T) {
	n, err := NewNormal(0.01, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Cumulative(0.01); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("cdf at mean = %v", got)
	}
	peak := 1 / (0.05 * math.Sqrt(2*math.Pi))
	if got := n.Density(0.01); math.Abs(got-peak) > 1e-9 {
		t.Fatalf("density at mean = %v, want %v", got, peak)
	}
	if got := n.Density(1e6); got != 0 {
		t.Fatalf("far density = %v", got)
	}
	if got := n.Cumulative(math.Inf(-1)); got != 0 {
		t.Fatalf("cdf(-inf) = %v", got)
	}
	if got := n.Cumulative(math.Inf(1)); got != 1 {
		t.Fatalf("cdf(+inf) = %v", got)
	}
}

func TestNormalDrawMoments(t *testing.T) {
	n := Normal{Mu: 0.02, Sigma: 0.05}
	r := newRand(7)
	const draws = 200000
	var sum, sumSq float64
	for i := 0; i < draws; i++ {
		x := n.Draw(r)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("non-finite draw %v", x)
		}
		sum += x
		sumSq += x * x
	}
	mean := sum / draws
	sd := math.Sqrt(sumSq/draws - mean*mean)
	if math.Abs(mean-0.02) > 0.001 {
		t.Fatalf("sample mean %v too far from 0.02", mean)
	}
	if math.Abs(sd-0.05) > 0.001 {
		t.Fatalf("sample sd %v too far from 0.05", sd)
	}
}

type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

func TestStandardNormalZeroUniformIsFinite(t *testing.T) {
	r := rand.New(zeroSource{})
	if got := StandardNormal(r); math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected finite draw from zero uniforms, got %v", got)
	}
	st := StudentT{Mu: 0.3, Sigma: 1, Nu: 1}
	if got := st.Draw(r); got != 0.3 {
		t.Fatalf("expected location fallback, got %v", got)
	}
}

func TestDegenerateNormal(t *testing.T) {
	n := Normal{Mu: 0.1}
	if !n.Degenerate() {
		t.Fatal("expected point mass")
	}
	if n.Cumulative(0.1) != 1 || n.Cumulative(0.0999) != 0 {
		t.Fatalf("unexpected step cdf")
	}
	if n.Density(0.2) != 0 {
		t.Fatal("expected zero density off the mass")
	}
	if n.Draw(newRand(3)) != 0.1 {
		t.Fatal("expected draw at the mass")
	}
}

func TestStudentTApproachesNormal(t *testing.T) {
	st, err := NewStudentT(0, 0.05, 1e6)
	if err != nil {
		t.Fatal(err)
	}
	n := Normal{Mu: 0, Sigma: 0.05}
	for _, x := range []float64{-0.1, -0.02, 0, 0.04, 0.12} {
		if math.Abs(st.Cumulative(x)-n.Cumulative(x)) > 1e-4 {
			t.Fatalf("cdf(%v): t=%v normal=%v", x, st.Cumulative(x), n.Cumulative(x))
		}
	}
}

func TestStudentTDrawsAreFiniteAtLowDF(t *testing.T) {
	st := StudentT{Mu: 0, Sigma: 0.05, Nu: 1}
	r := newRand(11)
	for i := 0; i < 50000; i++ {
		if x := st.Draw(r); math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("non-finite draw %v", x)
		}
	}
	if len(st.Warnings()) != 1 {
		t.Fatalf("expected a warning for df=1")
	}
	if len(StudentT{Nu: 5}.Warnings()) != 0 {
		t.Fatalf("expected no warning for df=5")
	}
}

func TestConstructorsRejectInvalidParameters(t *testing.T) {
	_, errN := NewNormal(0, 0)
	_, errT := NewStudentT(0, 1, 0.5)
	_, errU := NewUniform(1, 1)
	_, errI := NormalFromInterval(0.1, -0.1, 0.9)
	for _, err := range []error{errN, errT, errU, errI} {
		if !errors.Is(err, validate.ErrInvalidInput) {
			t.Fatalf("expected invalid input error, got %v", err)
		}
	}
}

func TestNormalFromNinetyPercentInterval(t *testing.T) {
	n, err := NormalFromInterval(-0.0822, 0.0822, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(n.Mu) > 1e-12 {
		t.Fatalf("mean = %v, want 0", n.Mu)
	}
	if math.Abs(n.Sigma-0.05) > 0.0005 {
		t.Fatalf("scale = %v, want about 0.05", n.Sigma)
	}
}

func TestSpecBuild(t *testing.T) {
	cases := []struct {
		spec Spec
		kind Kind
		err  bool
	}{
		{Spec{Type: "normal", Location: 0, Scale: 0.05}, KindNormal, false},
		{Spec{Type: "Normal", Interval: &Interval{Low: -0.1, High: 0.1}}, KindNormal, false},
		{Spec{Type: "student-t", Scale: 0.05, DegreesOfFreedom: 3}, KindStudentT, false},
		{Spec{Type: "uniform", Low: -0.1, High: 0.1}, KindUniform, false},
		{Spec{Type: "uniform", Interval: &Interval{Low: -0.1, High: 0.1}}, KindUniform, false},
		{Spec{Type: "cauchy"}, "", true},
		{Spec{}, "", true},
	}
	for _, tc := range cases {
		p, err := tc.spec.Build()
		if tc.err {
			if err == nil {
				t.Fatalf("%+v: expected error", tc.spec)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%+v: %v", tc.spec, err)
		}
		if p.Kind() != tc.kind {
			t.Fatalf("kind = %s, want %s", p.Kind(), tc.kind)
		}
		round, err := SpecOf(p).Build()
		if err != nil || round.Kind() != tc.kind {
			t.Fatalf("SpecOf round trip failed: %v", err)
		}
	}
}

func TestMassBetween(t *testing.T) {
	u := Uniform{Low: 0, High: 1}
	if got := MassBetween(u, 0.25, 0.75); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("mass = %v", got)
	}
	if MassBetween(u, 1, 0) != 0 {
		t.Fatal("expected empty range to have no mass")
	}
}

func TestIntervalErrorsNameTheField(t *testing.T) {
	cases := []struct {
		low, high, confidence float64
		field, reason         string
	}{
		{0.1, -0.1, 0.9, "prior.interval.high", "greater than low"},
		{-0.1, 0.1, 1, "prior.interval.confidence", "less than 1"},
		{math.NaN(), 0.1, 0.9, "prior.interval.low", "finite"},
	}
	for _, tc := range cases {
		_, err := NormalFromInterval(tc.low, tc.high, tc.confidence)
		var ie *validate.InputError
		if !errors.As(err, &ie) {
			t.Fatalf("(%v, %v, %v): expected InputError, got %v", tc.low, tc.high, tc.confidence, err)
		}
		if ie.Field != tc.field || !strings.Contains(ie.Reason, tc.reason) {
			t.Fatalf("(%v, %v, %v): got %s: %s", tc.low, tc.high, tc.confidence, ie.Field, ie.Reason)
		}
	}
}
