package distribution

import (
	"fmt"
	"strings"

	"github.com/mwiater/voi/internal/validate"
)

// Interval is a central credible interval for the lift.
type Interval struct {
	Low        float64 `json:"low" yaml:"low" validate:"finite"`
	High       float64 `json:"high" yaml:"high" validate:"finite,gtfield=Low"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty" validate:"finite,gt=0,lt=1"`
}

// Spec is the tagged wire form of a prior as it appears in scenario files.
type Spec struct {
	Type             string    `json:"type" yaml:"type"`
	Location         float64   `json:"location,omitempty" yaml:"location,omitempty"`
	Scale            float64   `json:"scale,omitempty" yaml:"scale,omitempty"`
	DegreesOfFreedom float64   `json:"degreesOfFreedom,omitempty" yaml:"degreesOfFreedom,omitempty"`
	Low              float64   `json:"low,omitempty" yaml:"low,omitempty"`
	High             float64   `json:"high,omitempty" yaml:"high,omitempty"`
	Interval         *Interval `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// Build validates the spec and returns the prior it describes. A normal spec
// with an interval derives location and scale from the interval.
func (s Spec) Build() (Prior, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s.Type))) {
	case KindNormal:
		if s.Interval != nil {
			return NormalFromInterval(s.Interval.Low, s.Interval.High, s.Interval.Confidence)
		}
		return NewNormal(s.Location, s.Scale)
	case KindStudentT:
		return NewStudentT(s.Location, s.Scale, s.DegreesOfFreedom)
	case KindUniform:
		if s.Interval != nil {
			return NewUniform(s.Interval.Low, s.Interval.High)
		}
		return NewUniform(s.Low, s.High)
	case "":
		return nil, validate.Errorf("prior.type", "is required")
	default:
		return nil, validate.Errorf("prior.type", "unknown prior type %q (want normal, student-t or uniform)", s.Type)
	}
}

// SpecOf converts a prior back into its wire form.
func SpecOf(p Prior) Spec {
	switch v := p.(type) {
	case Normal:
		return Spec{Type: string(KindNormal), Location: v.Mu, Scale: v.Sigma}
	case StudentT:
		return Spec{Type: string(KindStudentT), Location: v.Mu, Scale: v.Sigma, DegreesOfFreedom: v.Nu}
	case Uniform:
		return Spec{Type: string(KindUniform), Low: v.Low, High: v.High}
	default:
		panic(fmt.Sprintf("distribution: unhandled prior %T", p))
	}
}
