package node

import (
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Transition decides whether a move from prev to curr is one to react to.
type Transition func(prev, curr float64) bool

// Rising returns a transition that fires when the value reaches target from below.
func Rising(target float64) Transition {
	return func(prev, curr float64) bool { return prev < target && curr == target }
}

// ChangeLatch is an edge-triggered node. A qualifying transition of the
// tracked node, seen on any tick, makes the next Sample return the changed
// node exactly once; every other Sample returns the normal node.
type ChangeLatch struct {
	tracked         domain.Node
	transition      Transition
	changed, normal domain.Node
	bounds          domain.Range

	mu      sync.Mutex
	prev    float64
	pending bool
}

// NewChangeLatch seeds the previous value from tracked at construction.
func NewChangeLatch(tracked domain.Node, transition Transition, changed, normal domain.Node) *ChangeLatch {
	rc, rn := changed.Bounds(), normal.Bounds()
	return &ChangeLatch{
		tracked:    tracked,
		transition: transition,
		changed:    changed,
		normal:     normal,
		bounds: domain.Range{
			Lower: min(rn.Lower, rc.Lower),
			Upper: max(rn.Upper, rc.Upper),
		},
		prev: tracked.Sample(),
	}
}

// Tick latches a qualifying transition. The tracked node is sampled twice,
// once for the transition check and once for the new previous value.
func (l *ChangeLatch) Tick() {
	l.mu.Lock()
	prev := l.prev
	l.mu.Unlock()

	hit := l.transition(prev, l.tracked.Sample())
	next := l.tracked.Sample()

	l.mu.Lock()
	l.pending = l.pending || hit
	l.prev = next
	l.mu.Unlock()
}

// Sample consumes a pending transition if there is one.
func (l *ChangeLatch) Sample() float64 {
	l.mu.Lock()
	fired := l.pending
	l.pending = false
	l.mu.Unlock()

	if fired {
		return l.changed.Sample()
	}
	return l.normal.Sample()
}

// Pending reports whether a transition is waiting to be consumed, without consuming it.
func (l *ChangeLatch) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *ChangeLatch) Bounds() domain.Range { return l.bounds }

func (l *ChangeLatch) Kind() string { return domain.KindLatch }

func (l *ChangeLatch) Children() []domain.Node {
	return []domain.Node{l.tracked, l.changed, l.normal}
}
