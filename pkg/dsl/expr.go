package dsl

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
)

// Expr is a fluent handle on a node created by a Builder.
// It is itself a domain.Node, so it can be passed anywhere a node is expected.
type Expr struct {
	b *Builder
	n domain.Node
}

// Node returns the underlying node.
func (e Expr) Node() domain.Node { return e.n }

func (e Expr) Sample() float64 { return e.n.Sample() }

func (e Expr) Bounds() domain.Range { return e.n.Bounds() }

// Add returns e + o.
func (e Expr) Add(o domain.Node) Expr {
	return e.b.wrap(node.NewSum(e.n, unwrap(o)))
}

// Sub returns e - o.
func (e Expr) Sub(o domain.Node) Expr {
	return e.b.wrap(node.NewSub(e.n, unwrap(o)))
}

// Scale returns e * factor.
func (e Expr) Scale(factor domain.Node) Expr {
	return e.b.wrap(node.NewScale(e.n, unwrap(factor)))
}

// ScaleBy returns e * f.
func (e Expr) ScaleBy(f float64) Expr {
	return e.Scale(node.NewConstant(f))
}

// Clamp limits e to [lower, upper].
func (e Expr) Clamp(lower, upper domain.Node) Expr {
	return e.b.wrap(node.NewClamp(e.n, unwrap(lower), unwrap(upper)))
}

// Delay returns e as it was the given number of seconds ago.
func (e Expr) Delay(seconds float64) Expr {
	d := node.NewDelayLine(e.n, seconds, e.b.clock)
	e.b.track(domain.KindDelay, d)
	return e.b.wrap(d)
}

// Map applies fn to every sample of e.
func (e Expr) Map(fn func(float64) float64, lower, upper float64) Expr {
	return e.b.wrap(node.NewMap(e.n, fn, lower, upper))
}

// Slot is a deferred node. It samples like its current definition and is
// closed with Rebind.
type Slot struct {
	*node.Slot
	b *Builder
}

// Expr returns a fluent handle on the slot.
func (s *Slot) Expr() Expr { return s.b.wrap(s.Slot) }

// Node returns the underlying slot.
func (s *Slot) Node() domain.Node { return s.Slot }

// Rebind replaces the slot definition. See node.Slot.Rebind.
func (s *Slot) Rebind(n domain.Node) error {
	return s.Slot.Rebind(unwrap(n))
}

type unwrapper interface {
	Node() domain.Node
}

// unwrap strips builder handles so graph walks see the real nodes.
func unwrap(n domain.Node) domain.Node {
	if u, ok := n.(unwrapper); ok {
		return u.Node()
	}
	return n
}

func unwrapAll(ns []domain.Node) []domain.Node {
	out := make([]domain.Node, len(ns))
	for i, n := range ns {
		out[i] = unwrap(n)
	}
	return out
}
