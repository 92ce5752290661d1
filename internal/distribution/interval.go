package distribution

import (
	"github.com/mwiater/voi/internal/validate"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultIntervalConfidence is the coverage assumed for bounds given without one.
const DefaultIntervalConfidence = 0.90

// NormalFromInterval derives a Normal prior whose central interval of the
// given coverage is [low, high].
func NormalFromInterval(low, high, confidence float64) (Normal, error) {
	if confidence == 0 {
		confidence = DefaultIntervalConfidence
	}
	if err := validate.Struct("prior.interval", Interval{Low: low, High: high, Confidence: confidence}); err != nil {
		return Normal{}, err
	}
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	return NewNormal((low+high)/2, (high-low)/(2*z))
}
