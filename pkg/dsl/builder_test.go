package dsl

import (
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Combinators(t *testing.T) {
	b := New()

	sum := b.Const(2).Add(b.Const(3))
	diff := b.Const(2).Sub(b.Const(3))
	scaled := b.Const(4).ScaleBy(-0.5)
	clamped := b.Const(50).Clamp(b.Const(0), b.Const(10))
	mapped := b.Const(3).Map(func(v float64) float64 { return v * v }, 0, 100)

	assert.Equal(t, 5.0, sum.Sample())
	assert.Equal(t, domain.Range{Lower: 5, Upper: 5}, sum.Bounds())
	assert.Equal(t, -1.0, diff.Sample())
	assert.Equal(t, -2.0, scaled.Sample())
	assert.Equal(t, domain.Range{Lower: -2, Upper: -2}, scaled.Bounds())
	assert.Equal(t, 10.0, clamped.Sample())
	assert.Equal(t, 9.0, mapped.Sample())
}

func TestBuilder_UnwrapsHandles(t *testing.T) {
	b := New()
	c := b.Const(1)
	s := c.Add(c)

	sum, ok := s.Node().(*node.Sum)
	require.True(t, ok)
	for _, child := range sum.Children() {
		_, isExpr := child.(Expr)
		assert.False(t, isExpr, "builder handles must not leak into the graph")
	}
}

func TestBuilder_FeedbackLoop(t *testing.T) {
	b := New()

	x := b.Deferred("x", -10, 10)
	integ := b.Integrate(1, b.Const(-10), b.Const(10), x.Expr().ScaleBy(-1))
	require.NoError(t, x.Rebind(integ))
	b.Expose("x", x)

	g, err := b.Build()
	require.NoError(t, err)

	tickers := g.Tickers()
	require.Len(t, tickers, 1)
	assert.Equal(t, "x", tickers[0].Name, "ticker exposed through a slot takes the output label")

	testutils.TickN(t, nil, 0, 3, tickers[0].Ticker)

	n, err := g.Lookup("x")
	require.NoError(t, err)
	// x' = -x with step 10ms: 1 * 0.99^3
	assert.InDelta(t, 0.970299, n.Sample(), 1e-9)
}

func TestBuilder_NamesExposedTickers(t *testing.T) {
	b := New()
	speed := b.Integrate(0, b.Const(0), b.Const(10), b.Const(1))
	b.Integrate(0, b.Const(0), b.Const(10), b.Const(2))
	b.Expose("speed", speed)
	b.Expose("speed_again", speed)

	g, err := b.Build()
	require.NoError(t, err)

	tickers := g.Tickers()
	require.Len(t, tickers, 2)
	assert.Equal(t, "speed", tickers[0].Name, "the first label wins")
	assert.Equal(t, domain.KindIntegrator+"_2", tickers[1].Name)
}

func TestBuilder_RebindMismatch(t *testing.T) {
	b := New()
	x := b.Deferred("x", 0, 1)

	err := x.Rebind(b.Const(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBoundsMismatch)

	var be *domain.BoundsError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "x", be.Slot)
	assert.False(t, x.Bound())
}

func TestBuilder_BuildRejectsUnboundSlot(t *testing.T) {
	b := New()
	b.Deferred("orphan", 0, 1)
	b.Expose("one", b.Const(1))

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnboundSlot)
	assert.Contains(t, err.Error(), "orphan")
}

func TestBuilder_BuildRejectsDuplicateLabels(t *testing.T) {
	b := New()
	b.Expose("v", b.Const(1))
	b.Expose("v", b.Const(2))

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrDuplicateLabel)
}

func TestBuilder_DelayUsesClock(t *testing.T) {
	clock := testutils.NewManualClock()
	src := testutils.NewSettable(1, 0, 10)

	b := New(WithClock(clock))
	delayed := b.Input(src).Delay(0.05)
	b.Expose("delayed", delayed)

	g, err := b.Build()
	require.NoError(t, err)
	require.Len(t, g.Tickers(), 1)
	tk := g.Tickers()[0]
	assert.Equal(t, "delayed", tk.Name)

	testutils.TickN(t, clock, domain.DefaultTick, 3, tk.Ticker)
	src.Set(7)
	testutils.TickN(t, clock, domain.DefaultTick, 3, tk.Ticker)
	assert.Equal(t, 1.0, delayed.Sample())

	testutils.TickN(t, clock, domain.DefaultTick, 10, tk.Ticker)
	assert.Equal(t, 7.0, delayed.Sample())
}

func TestBuilder_PeerAverage(t *testing.T) {
	b := New()
	peers := []domain.Node{b.Const(1), b.Const(2), b.Const(3)}

	avg, err := b.PeerAverage(peers[0], peers, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.5, avg.Sample())

	_, err = b.PeerAverage(peers[0], peers[:1], 0, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientPeers)
}

func TestBuilder_LatchAndConditional(t *testing.T) {
	grip := testutils.NewSettable(0, 0, 1)
	b := New()

	in := b.Input(grip)
	latch := b.Latch(in, node.Rising(1), b.Const(100), b.Const(10))
	cond := b.If(node.Greater(in, b.Const(0.5)), b.Const(1), b.Const(0))
	b.Expose("limit", latch)
	b.Expose("high", cond)

	g, err := b.Build()
	require.NoError(t, err)
	require.Len(t, g.Tickers(), 1)
	assert.Equal(t, "limit", g.Tickers()[0].Name)

	grip.Set(1)
	g.Tickers()[0].Ticker.Tick()
	assert.Equal(t, 1.0, cond.Sample())
	assert.Equal(t, 100.0, latch.Sample())
	assert.Equal(t, 10.0, latch.Sample())
}

func TestGraph_LookupAndLabels(t *testing.T) {
	b := New()
	b.Expose("a", b.Const(1))
	b.Expose("b", b.Const(2))

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, g.Labels())
	_, err = g.Lookup("missing")
	assert.ErrorIs(t, err, domain.ErrUnknownLabel)
}

func TestGraph_OnRebind(t *testing.T) {
	b := New()
	x := b.Deferred("x", 0, 1)
	require.NoError(t, x.Rebind(b.Uniform(0, 1)))
	b.Expose("x", x)

	g, err := b.Build()
	require.NoError(t, err)

	var got []string
	g.OnRebind(func(slot string, _ domain.Node) { got = append(got, slot) })
	require.NoError(t, x.Rebind(b.Uniform(0, 1)))
	g.OnRebind(nil)
	require.NoError(t, x.Rebind(b.Uniform(0, 1)))

	assert.Equal(t, []string{"x"}, got)
}

func TestGraph_Inspect(t *testing.T) {
	b := New()
	x := b.Deferred("x", -10, 10)
	require.NoError(t, x.Rebind(b.Integrate(1, b.Const(-10), b.Const(10), x.Expr().ScaleBy(-1))))
	b.Expose("x", x)

	g, err := b.Build()
	require.NoError(t, err)

	infos := g.Inspect()
	require.NotEmpty(t, infos)
	assert.Equal(t, "slot_1", infos[0].ID)
	assert.Equal(t, "x", infos[0].Label)
	assert.Equal(t, []string{"integrator_1"}, infos[0].Children)

	var integ domain.NodeInfo
	for _, info := range infos {
		if info.Kind == domain.KindIntegrator {
			integ = info
		}
	}
	assert.True(t, integ.Ticking)
	assert.Equal(t, domain.Range{Lower: -10, Upper: 10}, integ.Bounds)
	assert.Contains(t, integ.Children, "scale_1")
}
