package node

import "github.com/aretw0/espalier/pkg/domain"

// Sum adds two nodes.
type Sum struct {
	a, b   domain.Node
	bounds domain.Range
}

// NewSum returns a + b. The declared range is the sum of both ranges.
func NewSum(a, b domain.Node) *Sum {
	ra, rb := a.Bounds(), b.Bounds()
	return &Sum{
		a: a,
		b: b,
		bounds: domain.Range{
			Lower: ra.Lower + rb.Lower,
			Upper: ra.Upper + rb.Upper,
		},
	}
}

// NewSub returns a - b, expressed as Sum(a, Scale(b, Constant(-1))).
func NewSub(a, b domain.Node) *Sum {
	return NewSum(a, NewScale(b, NewConstant(-1)))
}

func (s *Sum) Sample() float64 { return s.a.Sample() + s.b.Sample() }

func (s *Sum) Bounds() domain.Range { return s.bounds }

func (s *Sum) Kind() string { return domain.KindSum }

func (s *Sum) Children() []domain.Node { return []domain.Node{s.a, s.b} }

// Scale multiplies a node by a factor node.
type Scale struct {
	a, factor domain.Node
	bounds    domain.Range
}

// NewScale returns a * factor.
//
// The declared range is a snapshot taken from factor.Sample() at
// construction time and is never re-derived, so the factor must already
// produce a meaningful value when NewScale is called.
func NewScale(a, factor domain.Node) *Scale {
	f := factor.Sample()
	r := a.Bounds()
	lo, hi := r.Lower*f, r.Upper*f
	return &Scale{
		a:      a,
		factor: factor,
		bounds: domain.Range{Lower: min(lo, hi), Upper: max(lo, hi)},
	}
}

func (s *Scale) Sample() float64 { return s.a.Sample() * s.factor.Sample() }

func (s *Scale) Bounds() domain.Range { return s.bounds }

func (s *Scale) Kind() string { return domain.KindScale }

func (s *Scale) Children() []domain.Node { return []domain.Node{s.a, s.factor} }
