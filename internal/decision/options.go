package decision

import (
	"math/rand/v2"

	"github.com/mwiater/voi/internal/validate"
)

const (
	// DefaultSamples is the Monte Carlo sample count when none is requested.
	DefaultSamples = 5000
	// DefaultAttemptMultiplier caps draws at this multiple of the requested count.
	DefaultAttemptMultiplier = 10
	// DefaultGridPoints is the resolution of the posterior-mean integration grid.
	DefaultGridPoints = 401
	// DefaultSeed seeds the stream used when Options.Rand is nil.
	DefaultSeed = 20240601
)

// Options tune a Monte Carlo calculation.
type Options struct {
	Samples           int
	AttemptMultiplier int
	GridPoints        int
	// Rand is the random source. Nil falls back to a stream seeded with DefaultSeed.
	Rand *rand.Rand
}

// WithDefaults fills zero fields and validates the result.
func (o Options) WithDefaults() (Options, error) {
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.AttemptMultiplier == 0 {
		o.AttemptMultiplier = DefaultAttemptMultiplier
	}
	if o.GridPoints == 0 {
		o.GridPoints = DefaultGridPoints
	}
	if o.Samples < 0 {
		return o, validate.Errorf("samples", "must be positive, got %d", o.Samples)
	}
	if o.AttemptMultiplier < 1 {
		return o, validate.Errorf("attemptMultiplier", "must be at least 1, got %d", o.AttemptMultiplier)
	}
	if o.GridPoints < 3 {
		return o, validate.Errorf("gridPoints", "must be at least 3, got %d", o.GridPoints)
	}
	if o.Rand == nil {
		o.Rand = NewRand(DefaultSeed, 0)
	}
	return o, nil
}

// NewRand returns a PCG-backed generator for the given seed and stream.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
