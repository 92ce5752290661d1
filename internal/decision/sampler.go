package decision

import (
	"context"
	"math/rand/v2"

	"github.com/mwiater/voi/internal/distribution"
)

// checkEvery is how many attempts pass between context checks.
const checkEvery = 256

// Sampler draws lifts from a prior and rejects those outside the feasible
// range for the baseline rate. Total attempts are capped so an infeasible
// prior ends in a shortfall instead of a hang.
type Sampler struct {
	prior       distribution.Prior
	rng         *rand.Rand
	lo, hi      float64
	maxAttempts int
	attempts    int
	rejected    int
	accepted    int
}

// NewSampler prepares a sampler for requested valid draws.
func NewSampler(prior distribution.Prior, baselineRate float64, requested, multiplier int, r *rand.Rand) *Sampler {
	lo, hi := FeasibleRange(baselineRate)
	return &Sampler{
		prior:       prior,
		rng:         r,
		lo:          lo,
		hi:          hi,
		maxAttempts: requested * multiplier,
	}
}

// Next returns the next feasible lift. ok is false once the attempt budget is
// spent. A cancelled ctx returns its error.
func (s *Sampler) Next(ctx context.Context) (lift float64, ok bool, err error) {
	for s.attempts < s.maxAttempts {
		if s.attempts%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, false, err
			}
		}
		s.attempts++
		l := s.prior.Draw(s.rng)
		if l >= s.lo && l <= s.hi {
			s.accepted++
			return l, true, nil
		}
		s.rejected++
	}
	return 0, false, nil
}

// Rand exposes the sampler's random source for the noise draws that follow.
func (s *Sampler) Rand() *rand.Rand { return s.rng }

// Accepted is the number of feasible draws returned so far.
func (s *Sampler) Accepted() int { return s.accepted }

// Rejected is the number of infeasible draws discarded so far.
func (s *Sampler) Rejected() int { return s.rejected }

// Attempts is the number of draws taken so far.
func (s *Sampler) Attempts() int { return s.attempts }
