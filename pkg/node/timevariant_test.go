package node_test

import (
	"testing"
	"time"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 10 * time.Millisecond

func TestIntegrator_ConstantRate(t *testing.T) {
	integ := node.NewIntegrator(0, node.NewConstant(0), node.NewConstant(100), node.NewConstant(10), step)

	assert.Equal(t, 0.0, integ.Sample(), "cold integrator returns its initial value")
	assert.Equal(t, domain.Range{Lower: 0, Upper: 100}, integ.Bounds())

	testutils.TickN(t, nil, step, 50, integ)
	assert.InDelta(t, 5.0, integ.Sample(), 10*step.Seconds())
}

func TestIntegrator_NeverExceedsUpperBound(t *testing.T) {
	integ := node.NewIntegrator(0, node.NewConstant(0), node.NewConstant(100), node.NewConstant(10), step)
	for i := 0; i < 1500; i++ {
		integ.Tick()
		require.LessOrEqual(t, integ.Sample(), 100.0)
	}
	assert.Equal(t, 100.0, integ.Sample())
}

func TestIntegrator_SampleDoesNotAdvance(t *testing.T) {
	integ := node.NewIntegrator(1, node.NewConstant(0), node.NewConstant(10), node.NewConstant(5), step)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1.0, integ.Sample())
	}
}

func TestIntegrator_DynamicLowerBound(t *testing.T) {
	lower := testutils.NewSettable(0, 0, 50)
	integ := node.NewIntegrator(0, node.NewInput(lower), node.NewConstant(100), node.NewConstant(-10), step)

	integ.Tick()
	assert.Equal(t, 0.0, integ.Sample())

	lower.Set(20)
	integ.Tick()
	assert.Equal(t, 20.0, integ.Sample())
}

func TestDelayLine_ColdIsZero(t *testing.T) {
	clock := testutils.NewManualClock()
	d := node.NewDelayLine(node.NewConstant(5), 0.2, clock)
	assert.Equal(t, 0.0, d.Sample())
	assert.Equal(t, domain.Range{Lower: 5, Upper: 5}, d.Bounds())
}

func TestDelayLine_WarmReturnsSource(t *testing.T) {
	clock := testutils.NewManualClock()
	d := node.NewDelayLine(node.NewConstant(5), 0.2, clock)

	testutils.TickN(t, clock, step, 25, d)
	assert.Equal(t, 5.0, d.Sample())
	assert.LessOrEqual(t, d.Len(), 21, "history is bounded by the delay")
}

func TestDelayLine_DelaysAStep(t *testing.T) {
	clock := testutils.NewManualClock()
	src := testutils.NewSettable(1, 0, 10)
	d := node.NewDelayLine(node.NewInput(src), 0.1, clock)

	testutils.TickN(t, clock, step, 20, d)
	require.Equal(t, 1.0, d.Sample())

	src.Set(7)
	testutils.TickN(t, clock, step, 5, d)
	assert.Equal(t, 1.0, d.Sample(), "change is not visible before the delay elapses")

	testutils.TickN(t, clock, step, 10, d)
	assert.Equal(t, 7.0, d.Sample())
}

func TestChangeLatch_ConsumedOnce(t *testing.T) {
	tracked := testutils.NewSettable(0, 0, 1)
	latch := node.NewChangeLatch(node.NewInput(tracked), node.Rising(1), node.NewConstant(99), node.NewConstant(7))

	assert.False(t, latch.Pending(), "cold latch has nothing pending")
	assert.Equal(t, 7.0, latch.Sample())

	for i := 0; i < 3; i++ {
		latch.Tick()
	}
	tracked.Set(1)
	latch.Tick()

	assert.True(t, latch.Pending())
	assert.Equal(t, 99.0, latch.Sample())
	assert.Equal(t, 7.0, latch.Sample())

	latch.Tick()
	assert.Equal(t, 7.0, latch.Sample(), "staying at 1 is not a new transition")
}

func TestChangeLatch_StickyUntilSampled(t *testing.T) {
	tracked := testutils.NewSettable(0.5, 0, 1)
	latch := node.NewChangeLatch(node.NewInput(tracked), node.Rising(1), node.NewConstant(1), node.NewConstant(0))

	tracked.Set(1)
	latch.Tick()
	tracked.Set(0.2)
	latch.Tick()
	latch.Tick()

	assert.Equal(t, 1.0, latch.Sample(), "a transition survives later ticks")
	assert.Equal(t, 0.0, latch.Sample())
}

func TestChangeLatch_Bounds(t *testing.T) {
	latch := node.NewChangeLatch(node.NewConstant(0), node.Rising(1),
		node.NewDerived(func() float64 { return 0 }, 0, 180),
		node.NewDerived(func() float64 { return 0 }, 180, 900))
	assert.Equal(t, domain.Range{Lower: 0, Upper: 900}, latch.Bounds())
}
