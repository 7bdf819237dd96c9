package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/node"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTicker struct {
	n atomic.Int64
}

func (c *countingTicker) Tick() { c.n.Add(1) }

type panickyTicker struct {
	n atomic.Int64
}

func (p *panickyTicker) Tick() {
	p.n.Add(1)
	panic("boom")
}

func TestScheduler_TicksEveryRegisteredNode(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	a, b := &countingTicker{}, &countingTicker{}
	s.Register("a", a)
	s.Register("b", b)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return a.n.Load() >= 5 && b.n.Load() >= 5
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopJoinsGoroutines(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	c := &countingTicker{}
	s.Register("c", c)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return c.n.Load() > 0 }, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())
	after := c.n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, c.n.Load(), "no tick after Stop returns")

	s.Stop()
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	c := &countingTicker{}
	s.Register("c", c)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutines did not exit after cancel")
	}
}

func TestScheduler_RestartAfterContextCancel(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	c := &countingTicker{}
	s.Register("c", c)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool { return c.n.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	assert.False(t, s.Running(), "a cancelled context ends the run")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.True(t, s.Running())

	before := c.n.Load()
	require.Eventually(t, func() bool { return c.n.Load() > before }, time.Second, time.Millisecond)
}

func TestScheduler_ConcurrentStartStop(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	s.Register("c", &countingTicker{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Start(context.Background())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Stop()
			}
		}()
	}
	wg.Wait()
	s.Stop()
	assert.False(t, s.Running())
}

func TestScheduler_DoubleStart(t *testing.T) {
	s := scheduler.New()
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.ErrorIs(t, s.Start(context.Background()), domain.ErrAlreadyRunning)
}

func TestScheduler_RegisterWhileRunning(t *testing.T) {
	s := scheduler.New(scheduler.WithInterval(time.Millisecond))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	late := &countingTicker{}
	s.Register("late", late)
	assert.Equal(t, 1, s.Len())
	require.Eventually(t, func() bool { return late.n.Load() > 0 }, time.Second, time.Millisecond)
}

func TestScheduler_RecoversPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	s := scheduler.New(scheduler.WithInterval(time.Millisecond), scheduler.WithMetrics(m))
	bad := &panickyTicker{}
	s.Register("bad", bad)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return bad.n.Load() >= 3 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.TickPanics.WithLabelValues("bad")), 2.0)
}

func TestScheduler_IntegratorInRealTime(t *testing.T) {
	interval := 10 * time.Millisecond
	integ := node.NewIntegrator(0, node.NewConstant(0), node.NewConstant(100), node.NewConstant(10), interval)

	s := scheduler.New(scheduler.WithInterval(interval))
	s.Register("integrator", integ)
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return integ.Sample() >= 1.0 }, 5*time.Second, interval)
	s.Stop()
	assert.LessOrEqual(t, integ.Sample(), 100.0)
}

func TestScheduler_DelayLineWarmsUp(t *testing.T) {
	d := node.NewDelayLine(node.NewConstant(5), 0.2, nil)
	assert.Equal(t, 0.0, d.Sample())

	s := scheduler.New()
	s.Register("delay", d)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 5.0, d.Sample())
}
