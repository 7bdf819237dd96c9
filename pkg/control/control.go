package control

import (
	"math"
	"sync/atomic"

	"github.com/aretw0/espalier/pkg/domain"
)

// Slider is a thread-safe numeric input restricted to a range.
// It satisfies node.InputSource.
type Slider struct {
	bits   atomic.Uint64
	bounds domain.Range
}

// NewSlider returns a slider over [lower, upper] starting at initial
// (clamped to the range).
func NewSlider(initial, lower, upper float64) *Slider {
	s := &Slider{bounds: domain.Range{Lower: lower, Upper: upper}}
	s.Set(initial)
	return s
}

// CurrentValue returns the slider position.
func (s *Slider) CurrentValue() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Set moves the slider, clamping v to its bounds. It returns the stored value.
func (s *Slider) Set(v float64) float64 {
	v = max(s.bounds.Lower, min(v, s.bounds.Upper))
	s.bits.Store(math.Float64bits(v))
	return v
}

// Bounds returns the slider range.
func (s *Slider) Bounds() domain.Range { return s.bounds }

// Switch is a thread-safe boolean input.
// It satisfies node.ToggleSource.
type Switch struct {
	on atomic.Bool
}

// NewSwitch returns a switch in the given position.
func NewSwitch(on bool) *Switch {
	s := &Switch{}
	s.on.Store(on)
	return s
}

// IsActive reports whether the switch is on.
func (s *Switch) IsActive() bool { return s.on.Load() }

// Set moves the switch.
func (s *Switch) Set(on bool) { s.on.Store(on) }

// Flip inverts the switch and returns the new position.
func (s *Switch) Flip() bool {
	for {
		old := s.on.Load()
		if s.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
