package control

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Kind names the type of a registered control.
type Kind string

const (
	KindSlider Kind = "slider"
	KindSwitch Kind = "switch"
)

// Info is a serializable description of a control and its current value.
// Value is 0 or 1 for switches.
type Info struct {
	Name   string       `json:"name"`
	Kind   Kind         `json:"kind"`
	Value  float64      `json:"value"`
	Bounds domain.Range `json:"bounds"`
}

// Registry manages the named controls of a graph.
type Registry struct {
	mu       sync.RWMutex
	sliders  map[string]*Slider
	switches map[string]*Switch
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sliders:  make(map[string]*Slider),
		switches: make(map[string]*Switch),
	}
}

// AddSlider registers a slider. If a control with the same name exists,
// it is overwritten.
func (r *Registry) AddSlider(name string, s *Slider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.switches, name)
	r.sliders[name] = s
}

// AddSwitch registers a switch. If a control with the same name exists,
// it is overwritten.
func (r *Registry) AddSwitch(name string, s *Switch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sliders, name)
	r.switches[name] = s
}

// Slider looks up a slider by name.
func (r *Registry) Slider(name string) (*Slider, error) {
	r.mu.RLock()
	s, ok := r.sliders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("slider %q: %w", name, domain.ErrUnknownControl)
	}
	return s, nil
}

// Switch looks up a switch by name.
func (r *Registry) Switch(name string) (*Switch, error) {
	r.mu.RLock()
	s, ok := r.switches[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("switch %q: %w", name, domain.ErrUnknownControl)
	}
	return s, nil
}

// SetSlider moves the named slider and returns the stored (clamped) value.
func (r *Registry) SetSlider(name string, v float64) (float64, error) {
	s, err := r.Slider(name)
	if err != nil {
		return 0, err
	}
	return s.Set(v), nil
}

// SetSwitch moves the named switch.
func (r *Registry) SetSwitch(name string, on bool) error {
	s, err := r.Switch(name)
	if err != nil {
		return err
	}
	s.Set(on)
	return nil
}

// List describes every control, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.sliders)+len(r.switches))
	for name, s := range r.sliders {
		infos = append(infos, Info{Name: name, Kind: KindSlider, Value: s.CurrentValue(), Bounds: s.Bounds()})
	}
	for name, s := range r.switches {
		v := 0.0
		if s.IsActive() {
			v = 1
		}
		infos = append(infos, Info{Name: name, Kind: KindSwitch, Value: v, Bounds: domain.Range{Lower: 0, Upper: 1}})
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos
}
