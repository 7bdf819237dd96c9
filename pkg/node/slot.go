package node

import (
	"sync/atomic"

	"github.com/aretw0/espalier/pkg/domain"
)

// Slot wraps a node that can be replaced after construction.
//
// A slot is seeded with a placeholder, the rest of the graph is built
// against it, and it is then rebound to its final definition. This is how
// feedback cycles are closed. The declared bounds never change.
//
// Rebinding does not stop background ticking of the replaced node.
type Slot struct {
	name     string
	bounds   domain.Range
	current  atomic.Pointer[boxed]
	bound    atomic.Bool
	onRebind func(name string, n domain.Node)
}

type boxed struct {
	node domain.Node
}

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithSlotName names the slot in errors and introspection.
func WithSlotName(name string) SlotOption {
	return func(s *Slot) {
		s.name = name
	}
}

// WithRebindHook is called after every successful rebind.
func WithRebindHook(fn func(name string, n domain.Node)) SlotOption {
	return func(s *Slot) {
		s.onRebind = fn
	}
}

// NewSlot wraps initial, clamped to [lower, upper] so the placeholder
// honours the slot's contract.
func NewSlot(initial domain.Node, lower, upper float64, opts ...SlotOption) *Slot {
	s := &Slot{bounds: domain.Range{Lower: lower, Upper: upper}}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&boxed{node: NewClamp(initial, NewConstant(lower), NewConstant(upper))})
	return s
}

// Rebind replaces the wrapped node. It fails, leaving the slot unchanged,
// when n does not declare exactly the slot's bounds.
func (s *Slot) Rebind(n domain.Node) error {
	if got := n.Bounds(); got != s.bounds {
		return &domain.BoundsError{Slot: s.name, Declared: s.bounds, Got: got}
	}
	s.current.Store(&boxed{node: n})
	s.bound.Store(true)
	if s.onRebind != nil {
		s.onRebind(s.name, n)
	}
	return nil
}

// Bound reports whether the slot was rebound at least once.
func (s *Slot) Bound() bool { return s.bound.Load() }

// Name returns the slot name, if any.
func (s *Slot) Name() string { return s.name }

// Current returns the wrapped node.
func (s *Slot) Current() domain.Node { return s.current.Load().node }

func (s *Slot) Sample() float64 { return s.current.Load().node.Sample() }

func (s *Slot) Bounds() domain.Range { return s.bounds }

func (s *Slot) Kind() string { return domain.KindSlot }

func (s *Slot) Children() []domain.Node { return []domain.Node{s.Current()} }
