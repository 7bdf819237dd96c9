package scenario

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Params are the physical constants of the traction-control scenario.
type Params struct {
	// Wheels is the number of driven wheels. Peer averages need at least two.
	Wheels int `mapstructure:"wheels" json:"wheels"`
	// MaxSpeed is the wheel speed limit with traction, in rad/s.
	MaxSpeed float64 `mapstructure:"max_speed" json:"max_speed"`
	// FreeSpinFactor multiplies MaxSpeed for a wheel spinning without grip.
	FreeSpinFactor float64 `mapstructure:"free_spin_factor" json:"free_spin_factor"`
	// Acceleration is the wheel acceleration at full throttle and full grip, in rad/s².
	Acceleration float64 `mapstructure:"acceleration" json:"acceleration"`
	// Drag is the constant deceleration opposing every wheel.
	Drag float64 `mapstructure:"drag" json:"drag"`
	// BrakeAcceleration applies while the brake actuator is engaged.
	BrakeAcceleration float64 `mapstructure:"brake_acceleration" json:"brake_acceleration"`
	// SlipAcceleration applies while throttling a wheel that lost grip.
	SlipAcceleration float64 `mapstructure:"slip_acceleration" json:"slip_acceleration"`
	// TachometerDelay is how long a speed measurement takes to arrive, in seconds.
	TachometerDelay float64 `mapstructure:"tachometer_delay" json:"tachometer_delay"`
	// SlipRatio is how far above the peer average a measured wheel must be
	// before the controller brakes it.
	SlipRatio float64 `mapstructure:"slip_ratio" json:"slip_ratio"`
	// TractionControl is the initial position of the controller switch.
	TractionControl bool `mapstructure:"traction_control" json:"traction_control"`
}

// DefaultParams returns the constants of the reference car: 17" wheels with
// a top speed of 140 km/h reached in about 20 seconds.
func DefaultParams() Params {
	return Params{
		Wheels:            4,
		MaxSpeed:          180,
		FreeSpinFactor:    5,
		Acceleration:      9,
		Drag:              1,
		BrakeAcceleration: -100,
		SlipAcceleration:  50,
		TachometerDelay:   0.5,
		SlipRatio:         1.5,
	}
}

// FreeSpinSpeed is the speed limit of a wheel without grip.
func (p Params) FreeSpinSpeed() float64 {
	return p.MaxSpeed * p.FreeSpinFactor
}

// DecodeParams overlays raw (typically the scenario section of the config
// file) on DefaultParams. Input is weakly typed, so "0.5" decodes into a
// float; unknown keys are rejected.
func DecodeParams(raw map[string]any) (Params, error) {
	p := DefaultParams()
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &p,
	})
	if err != nil {
		return Params{}, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("failed to decode scenario params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate rejects parameters the wiring cannot honour.
func (p Params) Validate() error {
	var errs []error
	if p.Wheels < 2 {
		errs = append(errs, fmt.Errorf("wheels must be at least 2, got %d", p.Wheels))
	}
	if p.MaxSpeed <= 0 {
		errs = append(errs, fmt.Errorf("max_speed must be positive, got %g", p.MaxSpeed))
	}
	if p.FreeSpinFactor < 1 {
		errs = append(errs, fmt.Errorf("free_spin_factor must be at least 1, got %g", p.FreeSpinFactor))
	}
	if p.TachometerDelay < 0 {
		errs = append(errs, fmt.Errorf("tachometer_delay must not be negative, got %g", p.TachometerDelay))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid scenario params: %w", errors.Join(errs...))
	}
	return nil
}
