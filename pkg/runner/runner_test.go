package runner_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/control"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/runner"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureHandler records everything the runner presents.
type captureHandler struct {
	mu      sync.Mutex
	frames  []domain.Frame
	system  []string
	failOut error
}

func (h *captureHandler) Output(_ context.Context, f domain.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failOut != nil {
		return h.failOut
	}
	h.frames = append(h.frames, f)
	return nil
}

func (h *captureHandler) SystemOutput(_ context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.system = append(h.system, msg)
	return nil
}

func (h *captureHandler) Frames() []domain.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Frame(nil), h.frames...)
}

func (h *captureHandler) System() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.system...)
}

func newEngine(t *testing.T, controls *control.Registry) *espalier.Engine {
	t.Helper()
	b := dsl.New()
	level := control.NewSlider(2, 0, 10)
	if controls != nil {
		controls.AddSlider("level", level)
	}
	b.Expose("level", b.Input(level))
	b.Expose("double", b.Input(level).ScaleBy(2))

	graph, err := b.Build()
	require.NoError(t, err)
	eng, err := espalier.New(graph)
	require.NoError(t, err)
	return eng
}

func TestNewRunner_Defaults(t *testing.T) {
	r := runner.NewRunner(runner.WithLogger(nil))
	require.NotNil(t, r.Logger, "a nil logger falls back to the no-op logger")
	assert.False(t, r.Logger.Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, domain.DefaultSampleInterval, r.Interval)
	assert.NotNil(t, r.Handler)
}

func TestRunner_SamplesUntilDuration(t *testing.T) {
	eng := newEngine(t, nil)
	handler := &captureHandler{}
	rec := memory.NewRecorder(time.Minute)

	r := runner.NewRunner(
		runner.WithOutputHandler(handler),
		runner.WithRecorder(rec),
		runner.WithInterval(5*time.Millisecond),
		runner.WithDuration(60*time.Millisecond),
	)

	require.NoError(t, r.Run(context.Background(), eng))
	assert.False(t, eng.Running(), "engine must be stopped after the run")

	frames := handler.Frames()
	require.GreaterOrEqual(t, len(frames), 2)
	for i, f := range frames {
		assert.Equal(t, int64(i+1), f.Seq)
		assert.Equal(t, []string{"level", "double"}, f.Labels)
		assert.Equal(t, []float64{2, 4}, f.Values)
	}

	points, err := rec.Window(context.Background(), "double")
	require.NoError(t, err)
	assert.Len(t, points, len(frames))

	labels, err := rec.Labels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"double", "level"}, labels)
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	eng := newEngine(t, nil)
	handler := &captureHandler{}
	r := runner.NewRunner(runner.WithOutputHandler(handler), runner.WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, eng) }()

	assert.Eventually(t, func() bool { return len(handler.Frames()) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
	assert.False(t, eng.Running())
	assert.Empty(t, handler.System(), "cancellation by the caller is not an interrupt")
}

func TestRunner_OutputErrorStopsRun(t *testing.T) {
	eng := newEngine(t, nil)
	boom := errors.New("broken pipe")
	r := runner.NewRunner(runner.WithOutputHandler(&captureHandler{failOut: boom}))

	err := r.Run(context.Background(), eng)
	assert.ErrorIs(t, err, boom)
	assert.False(t, eng.Running())
}

func TestRunner_StartError(t *testing.T) {
	eng := newEngine(t, nil)
	require.NoError(t, eng.Start(context.Background()))
	defer eng.Stop()

	r := runner.NewRunner(runner.WithOutputHandler(&captureHandler{}))
	err := r.Run(context.Background(), eng)
	assert.ErrorContains(t, err, "start engine")
}

func TestRunner_ConsoleMovesControls(t *testing.T) {
	controls := control.NewRegistry()
	eng := newEngine(t, controls)
	handler := &captureHandler{}

	r := runner.NewRunner(
		runner.WithOutputHandler(handler),
		runner.WithInterval(5*time.Millisecond),
		runner.WithConsole(strings.NewReader("set level 5\n"), controls),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, eng) }()

	assert.Eventually(t, func() bool {
		frames := handler.Frames()
		return len(frames) > 0 && frames[len(frames)-1].Values[1] == 10
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, handler.System(), "level = 5")
}

func TestRunner_LockHeldDuringRun(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := redis.NewLocker(client, "espalier:")
	eng := newEngine(t, nil)

	r := runner.NewRunner(
		runner.WithOutputHandler(&captureHandler{}),
		runner.WithLocker(locker, "run", time.Minute),
		runner.WithInterval(5*time.Millisecond),
		runner.WithDuration(400*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, eng) }()

	assert.Eventually(t, func() bool { return mr.Exists("espalier:lock:run") }, time.Second, time.Millisecond)
	require.NoError(t, <-done)
	assert.False(t, mr.Exists("espalier:lock:run"), "lock must be released when the run ends")
}
