package node

import (
	"math/rand/v2"

	"github.com/aretw0/espalier/pkg/domain"
)

// Random is a leaf producing a fresh random draw on every sample.
type Random struct {
	draw   func() float64
	bounds domain.Range
}

// NewUniform draws uniformly from [lower, upper).
func NewUniform(lower, upper float64) *Random {
	return &Random{
		draw:   func() float64 { return lower + rand.Float64()*(upper-lower) },
		bounds: domain.Range{Lower: lower, Upper: upper},
	}
}

// NewNormal draws from N(mean, stddev), clamped to mean ± 3 stddev.
func NewNormal(mean, stddev float64) *Random {
	lo, hi := mean-3*stddev, mean+3*stddev
	return &Random{
		draw:   func() float64 { return clamp(mean+rand.NormFloat64()*stddev, lo, hi) },
		bounds: domain.Range{Lower: lo, Upper: hi},
	}
}

func (r *Random) Sample() float64 { return r.draw() }

func (r *Random) Bounds() domain.Range { return r.bounds }

func (r *Random) Kind() string { return domain.KindRandom }

func (r *Random) Children() []domain.Node { return nil }
