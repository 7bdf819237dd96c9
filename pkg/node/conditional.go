package node

import "github.com/aretw0/espalier/pkg/domain"

// Predicate is a zero-argument condition closed over whatever state it needs.
type Predicate func() bool

// Conditional selects between two nodes on every sample.
type Conditional struct {
	predicate Predicate
	then, els domain.Node
	bounds    domain.Range
}

// NewConditional returns predicate() ? then : els.
func NewConditional(predicate Predicate, then, els domain.Node) *Conditional {
	rt, re := then.Bounds(), els.Bounds()
	return &Conditional{
		predicate: predicate,
		then:      then,
		els:       els,
		bounds: domain.Range{
			Lower: min(rt.Lower, re.Lower),
			Upper: max(rt.Upper, re.Upper),
		},
	}
}

func (c *Conditional) Sample() float64 {
	if c.predicate() {
		return c.then.Sample()
	}
	return c.els.Sample()
}

func (c *Conditional) Bounds() domain.Range { return c.bounds }

func (c *Conditional) Kind() string { return domain.KindConditional }

func (c *Conditional) Children() []domain.Node { return []domain.Node{c.then, c.els} }

// Greater returns a predicate true while a samples above b.
func Greater(a, b domain.Node) Predicate {
	return func() bool { return a.Sample() > b.Sample() }
}

// Less returns a predicate true while a samples below b.
func Less(a, b domain.Node) Predicate {
	return func() bool { return a.Sample() < b.Sample() }
}

// Equal returns a predicate true while a and b sample the same value.
func Equal(a, b domain.Node) Predicate {
	return func() bool { return a.Sample() == b.Sample() }
}

// All combines predicates with a short-circuit AND.
func All(preds ...Predicate) Predicate {
	return func() bool {
		for _, p := range preds {
			if !p() {
				return false
			}
		}
		return true
	}
}
