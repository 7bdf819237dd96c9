package scenario

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/control"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/node"
)

// Control names registered by the traction scenario.
const (
	ControlThrottle        = "throttle"
	ControlTractionControl = "traction_control"
)

// GripControl names the grip slider of wheel i (zero based).
func GripControl(i int) string { return fmt.Sprintf("wheel_%d.grip", i+1) }

// Wheel holds the nodes of one wheel.
type Wheel struct {
	// Speed is the real wheel speed (system output).
	Speed *dsl.Slot
	// Measured is the tachometer reading, Speed delayed (feedback).
	Measured *dsl.Slot
	// Brake is the actuator, 1 while the controller brakes the wheel.
	Brake *dsl.Slot
	// Acceleration is the net angular acceleration, drag included.
	Acceleration dsl.Expr
	// PeerSpeed is the average measured speed of the other wheels, as
	// computed by the controller.
	PeerSpeed dsl.Expr
	// Limit is the upper bound of Speed. It is the peer average for exactly
	// one observation after the wheel regains grip, and is not exposed so
	// that samplers never consume that edge.
	Limit dsl.Expr
}

// Traction is the four-wheel traction-control controller.
type Traction struct {
	Params Params

	Throttle        *control.Slider
	TractionControl *control.Switch
	Grip            []*control.Slider
	Wheels          []Wheel

	// Controls registers every slider and switch above by name.
	Controls *control.Registry
}

// BuildTraction wires the scenario into b and exposes its outputs:
// "throttle", then per wheel "wheel_N.speed", "wheel_N.measured",
// "wheel_N.acceleration", "wheel_N.grip", "wheel_N.brake" and
// "wheel_N.peer_speed".
func BuildTraction(b *dsl.Builder, p Params) (*Traction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := p.Wheels
	freeSpin := p.FreeSpinSpeed()

	t := &Traction{
		Params:          p,
		Throttle:        control.NewSlider(0, 0, 1),
		TractionControl: control.NewSwitch(p.TractionControl),
		Grip:            make([]*control.Slider, n),
		Wheels:          make([]Wheel, n),
		Controls:        control.NewRegistry(),
	}
	t.Controls.AddSlider(ControlThrottle, t.Throttle)
	t.Controls.AddSwitch(ControlTractionControl, t.TractionControl)

	throttle := b.Input(t.Throttle)
	grips := make([]dsl.Expr, n)
	for i := range n {
		t.Grip[i] = control.NewSlider(1, 0, 1)
		t.Controls.AddSlider(GripControl(i), t.Grip[i])
		grips[i] = b.Input(t.Grip[i])
	}

	// Actuators and measurements start at 0: there is no reading yet.
	speeds := make([]domain.Node, n)
	measured := make([]domain.Node, n)
	for i := range n {
		w := &t.Wheels[i]
		w.Brake = b.Deferred(fmt.Sprintf("wheel_%d.brake", i+1), 0, 1)
		w.Measured = b.Deferred(fmt.Sprintf("wheel_%d.measured", i+1), 0, freeSpin)
		w.Speed = b.Deferred(fmt.Sprintf("wheel_%d.speed", i+1), 0, freeSpin)
		speeds[i] = w.Speed
		measured[i] = w.Measured
	}

	for i := range n {
		w := &t.Wheels[i]
		grip, brake := grips[i], w.Brake

		w.Acceleration = b.Derive(func() float64 {
			switch {
			case brake.Sample() == 1:
				return p.BrakeAcceleration
			case grip.Sample() != 1 && throttle.Sample() > 0:
				return p.SlipAcceleration
			}
			return throttle.Sample() * p.Acceleration
		}, -100, 100, grip, brake, throttle).Sub(b.Const(p.Drag))

		var err error
		if w.PeerSpeed, err = b.PeerAverage(w.Measured, measured, 0, freeSpin); err != nil {
			return nil, fmt.Errorf("wheel %d: %w", i+1, err)
		}
		rejoin, err := b.PeerAverage(w.Speed, speeds, 0, p.MaxSpeed)
		if err != nil {
			return nil, fmt.Errorf("wheel %d: %w", i+1, err)
		}

		// A wheel spinning freely that regains grip rejoins the others at once.
		// The rejoin target averages true peer speeds, not tachometer readings.
		normal := b.Derive(func() float64 {
			if grip.Sample() == 1 {
				return p.MaxSpeed
			}
			return freeSpin
		}, p.MaxSpeed, freeSpin, grip)
		w.Limit = b.Latch(grip, node.Rising(1), rejoin, normal)
	}

	for i := range n {
		w := &t.Wheels[i]
		if err := w.Speed.Rebind(b.Integrate(0, b.Const(0), w.Limit, w.Acceleration)); err != nil {
			return nil, fmt.Errorf("wheel %d speed: %w", i+1, err)
		}
	}
	for i := range n {
		w := &t.Wheels[i]
		if err := w.Measured.Rebind(w.Speed.Expr().Delay(p.TachometerDelay)); err != nil {
			return nil, fmt.Errorf("wheel %d tachometer: %w", i+1, err)
		}
	}

	// Controller: brake a wheel whose measured speed exceeds the peer
	// average by more than the slip ratio.
	active := node.Active(t.TractionControl)
	for i := range n {
		w := &t.Wheels[i]
		slipping := node.All(active, node.Greater(w.Measured, w.PeerSpeed.ScaleBy(p.SlipRatio)))
		if err := w.Brake.Rebind(b.If(slipping, b.Const(1), b.Const(0))); err != nil {
			return nil, fmt.Errorf("wheel %d brake: %w", i+1, err)
		}
	}

	b.Expose(ControlThrottle, throttle)
	for i := range n {
		w := t.Wheels[i]
		prefix := fmt.Sprintf("wheel_%d.", i+1)
		b.Expose(prefix+"speed", w.Speed)
		b.Expose(prefix+"measured", w.Measured)
		b.Expose(prefix+"acceleration", w.Acceleration)
		b.Expose(prefix+"grip", grips[i])
		b.Expose(prefix+"brake", w.Brake)
		b.Expose(prefix+"peer_speed", w.PeerSpeed)
	}
	return t, nil
}

// NewTraction builds the scenario into a fresh builder and returns the
// validated graph.
func NewTraction(p Params, opts ...dsl.Option) (*Traction, *dsl.Graph, error) {
	b := dsl.New(opts...)
	t, err := BuildTraction(b, p)
	if err != nil {
		return nil, nil, err
	}
	g, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return t, g, nil
}
