package node

import "github.com/aretw0/espalier/pkg/domain"

// InputSource is an external, thread-safe numeric control (e.g. a slider).
type InputSource interface {
	CurrentValue() float64
	Bounds() domain.Range
}

// ToggleSource is an external, thread-safe boolean control.
type ToggleSource interface {
	IsActive() bool
}

// Input is a leaf that reads an InputSource.
type Input struct {
	src InputSource
}

// NewInput wraps src. Bounds are those reported by src at construction.
func NewInput(src InputSource) *Input {
	return &Input{src: src}
}

func (i *Input) Sample() float64 { return i.src.CurrentValue() }

func (i *Input) Bounds() domain.Range { return i.src.Bounds() }

func (i *Input) Kind() string { return domain.KindInput }

func (i *Input) Children() []domain.Node { return nil }

// Active returns a predicate that follows a toggle.
func Active(t ToggleSource) Predicate {
	return t.IsActive
}
