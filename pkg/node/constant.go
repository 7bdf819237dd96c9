package node

import "github.com/aretw0/espalier/pkg/domain"

// Constant is an immutable leaf.
type Constant struct {
	value float64
}

// NewConstant returns a leaf that always samples v and declares [v, v].
func NewConstant(v float64) *Constant {
	return &Constant{value: v}
}

func (c *Constant) Sample() float64 { return c.value }

func (c *Constant) Bounds() domain.Range { return domain.Range{Lower: c.value, Upper: c.value} }

func (c *Constant) Kind() string { return domain.KindConstant }

func (c *Constant) Children() []domain.Node { return nil }
