package node

import "github.com/aretw0/espalier/pkg/domain"

// Clamp limits a source to dynamic bounds.
type Clamp struct {
	source, lower, upper domain.Node
	bounds               domain.Range
}

// NewClamp returns clamp(source, lower, upper), with both bounds re-sampled
// on every call. The declared range is [lower.Lower, upper.Upper].
func NewClamp(source, lower, upper domain.Node) *Clamp {
	return &Clamp{
		source: source,
		lower:  lower,
		upper:  upper,
		bounds: domain.Range{Lower: lower.Bounds().Lower, Upper: upper.Bounds().Upper},
	}
}

func (c *Clamp) Sample() float64 {
	lo := c.lower.Sample()
	return clamp(c.source.Sample(), lo, c.upper.Sample())
}

func (c *Clamp) Bounds() domain.Range { return c.bounds }

func (c *Clamp) Kind() string { return domain.KindClamp }

func (c *Clamp) Children() []domain.Node { return []domain.Node{c.source, c.lower, c.upper} }
