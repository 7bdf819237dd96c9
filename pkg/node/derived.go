package node

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Derived computes its value with a caller-supplied function.
type Derived struct {
	fn     func() float64
	bounds domain.Range
	deps   []domain.Node
}

// NewDerived returns a node whose value is fn(). The range is taken as given.
// deps are only used for introspection; fn may close over any node.
func NewDerived(fn func() float64, lower, upper float64, deps ...domain.Node) *Derived {
	return &Derived{
		fn:     fn,
		bounds: domain.Range{Lower: lower, Upper: upper},
		deps:   deps,
	}
}

// NewMap applies fn to every sample of src.
func NewMap(src domain.Node, fn func(float64) float64, lower, upper float64) *Derived {
	return NewDerived(func() float64 { return fn(src.Sample()) }, lower, upper, src)
}

// NewPeerAverage returns the average of every peer except self:
// (sum(peers) - self) / (len(peers) - 1). self is expected to be one of peers.
//
// Fewer than two peers is a configuration error, since the divisor would be zero.
func NewPeerAverage(self domain.Node, peers []domain.Node, lower, upper float64) (*Derived, error) {
	if len(peers) < 2 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInsufficientPeers, len(peers))
	}
	ps := append([]domain.Node(nil), peers...)
	n := float64(len(ps) - 1)
	fn := func() float64 {
		var total float64
		for _, p := range ps {
			total += p.Sample()
		}
		return (total - self.Sample()) / n
	}
	return NewDerived(fn, lower, upper, ps...), nil
}

func (d *Derived) Sample() float64 { return d.fn() }

func (d *Derived) Bounds() domain.Range { return d.bounds }

func (d *Derived) Kind() string { return domain.KindDerived }

func (d *Derived) Children() []domain.Node { return d.deps }
