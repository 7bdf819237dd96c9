package dsl

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
)

// Builder manages the graph construction.
//
// A Builder is not safe for concurrent use. Once Build succeeds the
// resulting Graph is immutable and the Builder should be discarded.
type Builder struct {
	step  time.Duration
	clock node.Clock

	tickers []*NamedTicker
	slots   []*node.Slot
	outputs []domain.Output
	seq     map[string]int
	hook    *rebindHook
}

// Option configures the Builder.
type Option func(*Builder)

// WithStep sets the integration step of every integrator created by the
// builder. It should match the scheduler interval (default: 10ms).
func WithStep(d time.Duration) Option {
	return func(b *Builder) {
		if d > 0 {
			b.step = d
		}
	}
}

// WithClock sets the clock used by delay lines (default: system clock).
func WithClock(c node.Clock) Option {
	return func(b *Builder) {
		if c != nil {
			b.clock = c
		}
	}
}

// New creates a new graph builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		step:  domain.DefaultTick,
		clock: node.SystemClock(),
		seq:   make(map[string]int),
		hook:  &rebindHook{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Step returns the integration step.
func (b *Builder) Step() time.Duration { return b.step }

// Const creates a constant node.
func (b *Builder) Const(v float64) Expr {
	return b.wrap(node.NewConstant(v))
}

// Derive creates a node computed by fn with a caller-declared range.
// deps are recorded for introspection only.
func (b *Builder) Derive(fn func() float64, lower, upper float64, deps ...domain.Node) Expr {
	return b.wrap(node.NewDerived(fn, lower, upper, unwrapAll(deps)...))
}

// If selects then while predicate holds, els otherwise.
func (b *Builder) If(predicate node.Predicate, then, els domain.Node) Expr {
	return b.wrap(node.NewConditional(predicate, unwrap(then), unwrap(els)))
}

// Input reads an external collaborator such as a slider.
func (b *Builder) Input(src node.InputSource) Expr {
	return b.wrap(node.NewInput(src))
}

// Uniform draws from [lower, upper) on every sample.
func (b *Builder) Uniform(lower, upper float64) Expr {
	return b.wrap(node.NewUniform(lower, upper))
}

// Normal draws from a normal distribution clamped to three deviations.
func (b *Builder) Normal(mean, stddev float64) Expr {
	return b.wrap(node.NewNormal(mean, stddev))
}

// Deferred creates a named slot seeded with Constant(0). The slot must be
// rebound before Build, usually to a node that depends on the slot itself.
func (b *Builder) Deferred(name string, lower, upper float64) *Slot {
	s := node.NewSlot(node.NewConstant(0), lower, upper,
		node.WithSlotName(name),
		node.WithRebindHook(b.hook.fire),
	)
	b.slots = append(b.slots, s)
	return &Slot{Slot: s, b: b}
}

// Integrate creates an integrator ticking with the builder step.
func (b *Builder) Integrate(initial float64, lower, upper, rate domain.Node) Expr {
	n := node.NewIntegrator(initial, unwrap(lower), unwrap(upper), unwrap(rate), b.step)
	b.track(domain.KindIntegrator, n)
	return b.wrap(n)
}

// Latch creates a change latch on tracked.
func (b *Builder) Latch(tracked domain.Node, transition node.Transition, changed, normal domain.Node) Expr {
	n := node.NewChangeLatch(unwrap(tracked), transition, unwrap(changed), unwrap(normal))
	b.track(domain.KindLatch, n)
	return b.wrap(n)
}

// PeerAverage averages every peer except self.
func (b *Builder) PeerAverage(self domain.Node, peers []domain.Node, lower, upper float64) (Expr, error) {
	n, err := node.NewPeerAverage(unwrap(self), unwrapAll(peers), lower, upper)
	if err != nil {
		return Expr{}, err
	}
	return b.wrap(n), nil
}

// Expose records a labelled output. Outputs keep their insertion order.
func (b *Builder) Expose(label string, n domain.Node) {
	b.outputs = append(b.outputs, domain.Output{Label: label, Node: unwrap(n)})
}

// Build validates the graph and freezes it.
//
// It fails when a deferred slot was never rebound or when two outputs share
// a label. Tickers whose node is exposed directly, or through a slot, are
// renamed after the output label.
func (b *Builder) Build() (*Graph, error) {
	extra := make([]domain.Node, len(b.slots))
	for i, s := range b.slots {
		extra[i] = s
	}
	if err := validator.ValidateGraph(b.outputs, extra...); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	for _, out := range b.outputs {
		target := out.Node
		if s, ok := target.(*node.Slot); ok {
			target = s.Current()
		}
		for _, t := range b.tickers {
			if n, ok := t.Ticker.(domain.Node); ok && !t.named && n == target {
				t.Name = out.Label
				t.named = true
			}
		}
	}

	g := &Graph{
		outputs: append([]domain.Output(nil), b.outputs...),
		index:   make(map[string]int, len(b.outputs)),
		tickers: make([]NamedTicker, len(b.tickers)),
		slots:   append([]*node.Slot(nil), b.slots...),
		step:    b.step,
		hook:    b.hook,
	}
	for i, out := range g.outputs {
		g.index[out.Label] = i
	}
	for i, t := range b.tickers {
		g.tickers[i] = NamedTicker{Name: t.Name, Ticker: t.Ticker}
	}
	return g, nil
}

func (b *Builder) wrap(n domain.Node) Expr {
	return Expr{b: b, n: n}
}

// track records a time-variant node under a provisional name.
func (b *Builder) track(kind string, t domain.Ticker) {
	b.seq[kind]++
	b.tickers = append(b.tickers, &NamedTicker{
		Name:   fmt.Sprintf("%s_%d", kind, b.seq[kind]),
		Ticker: t,
	})
}

// NamedTicker is a time-variant node registered under a name.
type NamedTicker struct {
	Name   string
	Ticker domain.Ticker

	named bool
}

type rebindHook struct {
	fn atomic.Pointer[func(string, domain.Node)]
}

func (h *rebindHook) fire(name string, n domain.Node) {
	if fn := h.fn.Load(); fn != nil {
		(*fn)(name, n)
	}
}
