package node

import (
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

// Integrator accumulates a rate over time between dynamic bounds.
type Integrator struct {
	lower, upper, rate domain.Node
	step               float64
	bounds             domain.Range

	mu    sync.Mutex
	value float64
}

// NewIntegrator starts at initial and, on every tick, adds rate*step and
// clamps the result to [lower, upper]. step is the tick interval; zero
// selects domain.DefaultTick.
func NewIntegrator(initial float64, lower, upper, rate domain.Node, step time.Duration) *Integrator {
	if step <= 0 {
		step = domain.DefaultTick
	}
	return &Integrator{
		lower:  lower,
		upper:  upper,
		rate:   rate,
		step:   step.Seconds(),
		bounds: domain.Range{Lower: lower.Bounds().Lower, Upper: upper.Bounds().Upper},
		value:  initial,
	}
}

// Tick integrates one step. Children are sampled in the order rate, lower,
// upper before the state is locked.
func (i *Integrator) Tick() {
	rate := i.rate.Sample()
	lo := i.lower.Sample()
	hi := i.upper.Sample()

	i.mu.Lock()
	i.value = clamp(i.value+rate*i.step, lo, hi)
	i.mu.Unlock()
}

// Sample returns the stored value; it only changes on Tick.
func (i *Integrator) Sample() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

func (i *Integrator) Bounds() domain.Range { return i.bounds }

func (i *Integrator) Kind() string { return domain.KindIntegrator }

func (i *Integrator) Children() []domain.Node { return []domain.Node{i.rate, i.lower, i.upper} }
